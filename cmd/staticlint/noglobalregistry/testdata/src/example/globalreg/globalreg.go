package globalreg

import "example/internal/registry"

var shared = registry.New() // want "registry shared must not be a package-level variable"

var byValue registry.Registry // want "registry byValue must not be a package-level variable"

var count int

func owned() *registry.Registry {
	local := registry.New()
	_ = shared
	_ = byValue
	_ = count
	return local
}
