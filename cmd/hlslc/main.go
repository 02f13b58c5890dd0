// Command hlslc compiles an HLSL shader to SPIR-V.
//
// Usage:
//
//	hlslc [options] <input>
//
// Examples:
//
//	hlslc shader.hlsl                        # compile "main" as a vertex shader, write to stdout
//	hlslc -stage fragment -o shader.spv a.hlsl
//	hlslc -entry vs_main -stage vertex a.hlsl
//	hlslc -disasm -stage fragment a.hlsl     # print .spvasm-style disassembly instead of binary
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/tinyshader/hlslc"
	"github.com/tinyshader/hlslc/disasm"
)

var (
	output      = flag.String("o", "", "output file (default: stdout)")
	entry       = flag.String("entry", "main", "entry point function name")
	stageFlag   = flag.String("stage", "vertex", "shader stage: vertex, fragment, or compute")
	versionFlag = flag.Bool("version", false, "print version")
	disasmFlag  = flag.Bool("disasm", false, "print .spvasm-style disassembly instead of a binary module")
)

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func parseStage(s string) (hlslc.Stage, error) {
	switch s {
	case "vertex":
		return hlslc.StageVertex, nil
	case "fragment":
		return hlslc.StageFragment, nil
	case "compute":
		return hlslc.StageCompute, nil
	default:
		return 0, fmt.Errorf("unknown stage %q (want vertex, fragment, or compute)", s)
	}
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("hlslc version %s\n", version())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	inputPath := args[0]

	stage, err := parseStage(*stageFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	opts := hlslc.DefaultOptions()
	opts.Path = inputPath
	opts.EntryPoint = *entry
	opts.Stage = stage

	result := hlslc.Compile(string(source), opts)
	if result.Failed() {
		for _, d := range result.Diagnostics {
			fmt.Fprintln(os.Stderr, d.Error())
		}
		os.Exit(1)
	}

	if *disasmFlag {
		if err := disasm.Disassemble(result.Words, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error disassembling output: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *output != "" {
		if err := os.WriteFile(*output, result.Words, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Successfully compiled %s to %s (%d bytes)\n", inputPath, *output, len(result.Words))
	} else {
		if _, err := os.Stdout.Write(result.Words); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: hlslc [options] <input.hlsl>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  hlslc shader.hlsl                          Compile to stdout\n")
	fmt.Fprintf(os.Stderr, "  hlslc -stage fragment -o out.spv a.hlsl    Compile a fragment shader to a file\n")
	fmt.Fprintf(os.Stderr, "  hlslc -disasm -stage fragment a.hlsl       Compile and print disassembly\n")
}
