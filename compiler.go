// Package hlslc compiles HLSL shader source to SPIR-V binary modules
// for Vulkan (spec.md §6.1).
//
// The pipeline is a strict sequence: lex, parse, analyze, lower to IR,
// encode. Each phase appends to a shared diag.List and continues past
// recoverable errors so a caller gets as many diagnostics as possible
// in one call; Compile itself stops at the first phase whose list is
// non-empty and returns the diagnostics instead of a binary, per
// spec.md §5/§7 ("the public API returns either the word buffer or the
// list, never both").
package hlslc

import (
	"fmt"

	"github.com/tinyshader/hlslc/analyzer"
	"github.com/tinyshader/hlslc/ast"
	"github.com/tinyshader/hlslc/diag"
	"github.com/tinyshader/hlslc/ir"
	"github.com/tinyshader/hlslc/lexer"
	"github.com/tinyshader/hlslc/spirv"
	"github.com/tinyshader/hlslc/token"
	"github.com/tinyshader/hlslc/types"
)

// Stage identifies the shader stage an entry point targets
// (spec.md §6.1).
type Stage = analyzer.Stage

const (
	StageVertex   = analyzer.StageVertex
	StageFragment = analyzer.StageFragment
	StageCompute  = analyzer.StageCompute
)

// Options configures a single Compile call (spec.md §6.1).
type Options struct {
	// Path is the source path attached to diagnostics and, in a future
	// preprocessor-enabled build, the base directory #include resolves
	// relative paths against.
	Path string

	// EntryPoint is the name of the function to compile as the shader
	// entry point.
	EntryPoint string

	// Stage is the shader stage EntryPoint is compiled for.
	Stage Stage

	// SPIRVVersion is the target SPIR-V version (default: 1.3).
	SPIRVVersion spirv.Version
}

// DefaultOptions returns options for a vertex-stage "main" entry
// point, the common case for the end-to-end scenarios of spec.md §8.
func DefaultOptions() Options {
	return Options{
		Path:         "shader.hlsl",
		EntryPoint:   "main",
		Stage:        StageVertex,
		SPIRVVersion: spirv.Version1_3,
	}
}

// Result is the outcome of a Compile call: either Words is non-nil and
// Diagnostics contains only Notes, or Words is nil and Diagnostics
// contains at least one error (spec.md §6.1, §7).
type Result struct {
	// Words is the compiled SPIR-V module as little-endian bytes, or
	// nil if compilation failed.
	Words []byte

	// Diagnostics holds every diagnostic accumulated across every
	// phase that ran, in order (spec.md §5: "later phases may still
	// run for diagnostic coverage").
	Diagnostics []diag.Diagnostic
}

// Failed reports whether compilation produced no binary.
func (r Result) Failed() bool { return r.Words == nil }

// Compile compiles source for the entry point and stage named in opts
// and returns the resulting SPIR-V binary (spec.md §6.1, §6.4).
//
// The pipeline is lex → parse → analyze → lower → encode (spec.md §5).
// Lex/parse errors are unrecoverable for the phase that produced them:
// compilation stops there and the diagnostic list is returned. A
// successful parse always proceeds through analysis (which, per §4.5,
// continues past recoverable errors on its own), but Compile only
// lowers and encodes if analysis reported no errors.
func Compile(source string, opts Options) Result {
	var d diag.List

	toks := lexer.New(opts.Path, source, &d).Tokenize()
	if d.HasErrors() {
		return Result{Diagnostics: d.All()}
	}

	unit := ast.NewParser(toks, &d).Parse()
	if d.HasErrors() {
		return Result{Diagnostics: d.All()}
	}

	cache := types.NewCache()
	a := analyzer.New(unit, cache, &d, opts.EntryPoint, opts.Stage)
	a.Run()
	if d.HasErrors() {
		return Result{Diagnostics: d.All()}
	}
	if a.EntryFunc == nil {
		d.Add(token.Location{Path: opts.Path}, "no entry point %q found for this stage", opts.EntryPoint)
		return Result{Diagnostics: d.All()}
	}

	mod := ir.Build(unit, a, &d)
	if d.HasErrors() {
		return Result{Diagnostics: d.All()}
	}

	words, err := spirv.EncodeVersion(mod, opts.SPIRVVersion)
	if err != nil {
		d.Add(token.Location{Path: opts.Path}, "internal compiler error: %s", err)
		return Result{Diagnostics: d.All()}
	}

	return Result{Words: words, Diagnostics: d.All()}
}

// Error renders every error-severity diagnostic as a single error,
// satisfying callers that want Compile's failure case as a plain Go
// error rather than the structured Result.
func (r Result) Error() error {
	if !r.Failed() {
		return nil
	}
	if len(r.Diagnostics) == 0 {
		return fmt.Errorf("compilation failed with no diagnostics")
	}
	msg := r.Diagnostics[0].Error()
	if len(r.Diagnostics) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(r.Diagnostics)-1)
	}
	return fmt.Errorf("%s", msg)
}
