// Package pipeline wires the compilation phases together: parse the
// prelude and the user sources, resolve names, type check, and lower. A
// phase that collects errors stops the pipeline; partial output never
// flows downstream.
package pipeline

import (
	"fmt"
	"io"

	"github.com/sunholo/skiff/internal/backend"
	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/mir"
	"github.com/sunholo/skiff/internal/parser"
	"github.com/sunholo/skiff/internal/prelude"
	"github.com/sunholo/skiff/internal/resolve"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/syntax"
	"github.com/sunholo/skiff/internal/typecheck"
)

// Input is one source file to compile.
type Input struct {
	Path    string
	Content string
}

// Options controls a compilation run.
type Options struct {
	Verbose bool
	Writer  io.Writer
	// SkipPrelude leaves the embedded standard library out; used by unit
	// tests that bring their own minimal modules.
	SkipPrelude bool
}

// Result carries everything a compilation run produced.
type Result struct {
	Files     *source.FileManager
	Locations *source.Table
	Surface   *syntax.Program
	IR        *ir.Program
	Lowered   *mir.Program
	Errors    *diag.Bag
}

// Ok reports whether compilation reached the end without errors.
func (r *Result) Ok() bool {
	return !r.Errors.HasErrors()
}

// Compile runs the whole pipeline over the given inputs.
func Compile(inputs []Input, opts Options) *Result {
	result := &Result{
		Files:     source.NewFileManager(),
		Locations: source.NewTable(),
		Surface:   syntax.NewProgram(),
		Errors:    &diag.Bag{},
	}
	verbose := func(format string, args ...interface{}) {
		if opts.Verbose && opts.Writer != nil {
			fmt.Fprintf(opts.Writer, format+"\n", args...)
		}
	}

	all := inputs
	if !opts.SkipPrelude {
		var withStd []Input
		for _, src := range prelude.Sources() {
			withStd = append(withStd, Input{Path: src.Path, Content: src.Content})
		}
		all = append(withStd, inputs...)
	}
	for _, input := range all {
		content := string(source.Normalize([]byte(input.Content)))
		result.Files.Register(input.Path, content)
		parser.ParseFile(input.Path, content, result.Surface, result.Locations, result.Errors)
	}
	verbose("parse: %d modules, %d locations", len(result.Surface.Modules), result.Locations.Len())
	if result.Errors.HasErrors() {
		return result
	}

	result.IR = resolve.Resolve(result.Surface, result.Errors)
	verbose("resolve: %d functions, %d typedefs, %d classes, %d instances",
		result.IR.Functions.Len(), result.IR.TypeDefs.Len(),
		result.IR.Classes.Len(), result.IR.Instances.Len())
	if result.Errors.HasErrors() {
		return result
	}

	typecheck.Check(result.IR, result.Errors)
	verbose("typecheck: %d expression types", len(result.IR.ExprTypes))
	if result.Errors.HasErrors() {
		return result
	}

	result.Lowered = backend.Compile(result.IR)
	verbose("lower: %d functions, %d typedefs, %d partial calls",
		result.Lowered.Functions.Len(), result.Lowered.TypeDefs.Len(),
		result.Lowered.PartialCalls.Len())
	return result
}

// CompileFiles reads the given paths from disk and compiles them.
func CompileFiles(paths []string, opts Options) (*Result, error) {
	fm := source.NewFileManager()
	inputs := make([]Input, 0, len(paths))
	for _, path := range paths {
		content, err := fm.Read(path)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, Input{Path: path, Content: content})
	}
	return Compile(inputs, opts), nil
}
