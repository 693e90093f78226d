package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/sunholo/skiff/internal/config"
	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/interp"
	"github.com/sunholo/skiff/internal/pipeline"
	"github.com/sunholo/skiff/internal/repl"
)

var (
	red  = color.New(color.FgRed).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		verboseFlag = flag.Bool("v", false, "Enable per-pass summary output")
		configFlag  = flag.String("config", config.DefaultFile, "Project config file")
		runFlag     = flag.Bool("run", false, "Evaluate the program after compiling")
	)
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() >= 1 && flag.Arg(0) == "repl" {
		repl.Run(os.Stdout)
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
	verbose := *verboseFlag || cfg.Verbose
	run := *runFlag || cfg.Run

	args := flag.Args()
	if len(args) >= 1 && args[0] == "run" {
		run = true
		args = args[1:]
	}
	if len(args) == 0 {
		args = cfg.Inputs
	}
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	paths, err := collectSources(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "%s: no .sk sources found\n", red("error"))
		os.Exit(1)
	}

	result, err := pipeline.CompileFiles(paths, pipeline.Options{
		Verbose: verbose,
		Writer:  os.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
	if !result.Ok() {
		reporter := diag.NewReporter(result.Files, result.Locations)
		reporter.RenderAll(os.Stderr, result.Errors)
		os.Exit(1)
	}
	if verbose {
		fmt.Printf("compiled %d files\n", len(paths))
	}
	if run {
		interp.New(result.Lowered, os.Stdout).Run()
	}
}

// collectSources expands the argument list: files are taken as-is,
// directories are searched recursively for .sk files.
func collectSources(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() && strings.HasSuffix(path, ".sk") {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func printUsage() {
	fmt.Println(bold("skiff — a compiler for the sk language"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  skiff [flags] paths...   compile .sk files or directories")
	fmt.Println("  skiff run paths...       compile and evaluate Main.main")
	fmt.Println("  skiff repl               interactive expression loop")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
