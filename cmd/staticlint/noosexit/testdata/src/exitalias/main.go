package main

import (
	"fmt"
	sys "os"
	. "os"
)

func main() {
	defer fmt.Println("flushed")
	if len(sys.Args) > 2 {
		Exit(4) // want "avoid using os.Exit in main.main"
	}
	sys.Exit(3) // want "avoid using os.Exit in main.main"
}
