// Command spvdis disassembles a binary SPIR-V module to .spvasm-style
// text on stdout. It shares its rendering logic with hlslc's -disasm
// flag via the disasm package.
package main

import (
	"fmt"
	"os"

	"github.com/tinyshader/hlslc/disasm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: spvdis <file.spv>")
		return
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := disasm.Disassemble(data, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
