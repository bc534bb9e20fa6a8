// Package noglobalregistry reports package-level variables holding a
// registry. A registry is owned by the app and handed to its consumers.
package noglobalregistry

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
)

const registryPkgSuffix = "internal/registry"

// Analyzer flags `var x *registry.Registry` (or a value of it) declared at package scope.
var Analyzer = &analysis.Analyzer{
	Name: "noglobalregistry",
	Doc:  "prohibits package-level variables of type registry.Registry",
	Run:  run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.VAR {
				continue
			}
			for _, spec := range gen.Specs {
				valueSpec := spec.(*ast.ValueSpec)
				for _, name := range valueSpec.Names {
					if isRegistry(pass.TypesInfo.TypeOf(name)) {
						pass.Reportf(name.Pos(), "registry %s must not be a package-level variable", name.Name)
					}
				}
			}
		}
	}
	return nil, nil
}

func isRegistry(t types.Type) bool {
	if t == nil {
		return false
	}
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return false
	}
	return named.Obj().Name() == "Registry" &&
		strings.HasSuffix(named.Obj().Pkg().Path(), registryPkgSuffix)
}
