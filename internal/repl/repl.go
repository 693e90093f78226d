// Package repl is the interactive loop: every line is compiled as the
// body of a throwaway Main module through the full pipeline and evaluated
// with the interpreter.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/interp"
	"github.com/sunholo/skiff/internal/pipeline"
)

const prompt = "skiff> "

// historyFile is where the REPL keeps input history between sessions.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".skiff_history")
}

// Run starts the interactive loop, reading until EOF or :quit.
func Run(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	history := historyFile()
	if history != "" {
		if f, err := os.Open(history); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if history == "" {
			return
		}
		if f, err := os.Create(history); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(out, "skiff repl — enter an expression, :quit to exit")
	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			fmt.Fprintln(out)
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == ":quit" || input == ":q" {
			return
		}
		line.AppendHistory(input)
		Eval(input, out)
	}
}

// Eval compiles and runs a single expression, reporting errors with their
// source slices.
func Eval(input string, out io.Writer) {
	program := fmt.Sprintf("module Main where\n\nmain = println (show (%s))\n", input)
	result := pipeline.Compile([]pipeline.Input{
		{Path: "<repl>", Content: program},
	}, pipeline.Options{})
	if !result.Ok() {
		reporter := diag.NewReporter(result.Files, result.Locations)
		reporter.RenderAll(out, result.Errors)
		return
	}
	interp.New(result.Lowered, out).Run()
}
