// Package cmd is the top-level driver: argument parsing, phase
// orchestration, and diagnostic/output rendering. It is an external
// collaborator of every other package here — it knows how to sequence
// them, but holds none of their logic itself.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pecco/check"
	"pecco/codegen"
	"pecco/config"
	"pecco/lex"
	"pecco/parse"
	"pecco/prelude"
	"pecco/report"
	"pecco/resolve"
	"pecco/sym"
	"pecco/token"
)

// Run is the entry point called directly from main. It returns the process
// exit code.
func Run(args []string) int {
	opts, err := ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pecco:", err)
		return 1
	}

	source, err := os.ReadFile(opts.InputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pecco: cannot open file '%s': %s\n", opts.InputFile, err)
		return 1
	}

	if opts.Lex {
		return runLexOnly(string(source))
	}
	if opts.Parse {
		return runParseOnly(string(source), opts.InputFile, opts.LogLevel)
	}
	return runCompile(string(source), opts)
}

func runLexOnly(source string) int {
	toks := lex.New(source).TokenizeAll()
	hasError := false
	for _, t := range toks {
		if t.Kind == token.Error {
			hasError = true
		}
	}
	fmt.Print(FormatTokens(toks))
	if hasError {
		return 1
	}
	return 0
}

func runParseOnly(source, path string, level int) int {
	rep := report.Init(level)
	rep.SetSource(path, source)

	toks := lex.New(source).TokenizeAll()
	if lex.ReportErrors(toks, rep) {
		return 1
	}
	stmts := parse.New(toks, path, rep).ParseProgram()
	if rep.ErrorCount() > 0 {
		return 1
	}

	fmt.Print(FormatAST(stmts))
	return 0
}

// runCompile drives the full pipeline: lex, parse, build symbols (prelude
// then user), resolve operator sequences, type-check, then either dump
// and stop, or generate code and emit/compile/run.
func runCompile(source string, opts *Options) int {
	rep := report.Init(opts.LogLevel)
	rep.SetSource(opts.InputFile, source)

	if opts.LogLevel >= report.LogLevelVerbose {
		report.DisplayBanner(config.CompilerVersion)
	}

	manifest, ok := loadProjectManifest(filepath.Dir(opts.InputFile), rep)
	if !ok {
		return 1
	}

	rep.BeginPhase("parsing")
	toks := lex.New(source).TokenizeAll()
	if lex.ReportErrors(toks, rep) {
		rep.EndPhase()
		return 1
	}
	stmts := parse.New(toks, opts.InputFile, rep).ParseProgram()
	rep.EndPhase()
	if !rep.ShouldProceed() {
		return 1
	}

	rep.BeginPhase("building symbol table")
	table := sym.NewSymbolTable()
	if !prelude.Load(table, rep) {
		fmt.Fprintln(os.Stderr, "pecco: failed to load prelude")
		return 1
	}
	symsOK := sym.NewBuilder(rep, opts.InputFile).Collect(stmts, table, false)
	rep.EndPhase()
	if !symsOK {
		return 1
	}

	rep.BeginPhase("resolving operators")
	resolve.New(table, opts.InputFile).ResolveAll(stmts, rep)
	rep.EndPhase()
	if !rep.ShouldProceed() {
		return 1
	}

	rep.BeginPhase("type checking")
	checkOK := check.New(table, opts.InputFile).CheckAll(stmts, rep)
	rep.EndPhase()
	if !checkOK {
		return 1
	}

	if opts.DumpAST {
		fmt.Print(FormatAST(stmts))
	}
	if opts.DumpSymbols {
		fmt.Println(sym.DumpFlat(table, opts.HidePrelude))
		fmt.Println(sym.DumpHierarchy(table, opts.HidePrelude))
	}
	if opts.DumpAST || opts.DumpSymbols {
		return 0
	}

	rep.BeginPhase("generating code")
	moduleName := moduleNameFromPath(opts.InputFile)
	if manifest != nil {
		moduleName = manifest.Name
	}
	mod, ok := codegen.New(table, moduleName, opts.InputFile).Generate(stmts, rep)
	rep.EndPhase()
	if !ok {
		return 1
	}

	if opts.EmitLLVM {
		fmt.Print(mod.String())
		return 0
	}

	if opts.Compile {
		out := opts.Output
		if out == "" {
			out = defaultOutputName(moduleName, manifest) + ".o"
		}
		if err := compileModule(mod, out, true); err != nil {
			fmt.Fprintln(os.Stderr, "pecco:", err)
			return 1
		}
		report.DisplayInfoMessage("object file generated", out)
		return 0
	}

	code, err := compileLinkRun(rep, mod, defaultOutputName(moduleName, manifest), opts.Output, opts.Run)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pecco:", err)
		return 1
	}
	return code
}

func moduleNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// loadProjectManifest looks for a pecco.toml beside the input file. Its
// absence is not an error — compiling a bare source file with no manifest
// uses the built-in defaults — but a present, malformed manifest is.
func loadProjectManifest(dir string, rep *report.Reporter) (*config.Manifest, bool) {
	if _, err := os.Stat(filepath.Join(dir, config.ManifestFileName)); err != nil {
		return nil, true
	}
	return config.Load(dir, rep)
}

// defaultOutputName picks the stem used for the linked executable or object
// file when -o is not given: the manifest's output name if a manifest was
// found, falling back to the module name derived from the source path.
func defaultOutputName(moduleName string, manifest *config.Manifest) string {
	if manifest != nil && manifest.OutputName != "" {
		return manifest.OutputName
	}
	return moduleName
}
