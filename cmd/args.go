package cmd

import (
	"fmt"

	"pecco/report"
)

// Options is the parsed form of the command line.
type Options struct {
	InputFile string

	Lex   bool
	Parse bool

	EmitLLVM bool
	Compile  bool
	Run      bool

	Output string

	DumpAST     bool
	DumpSymbols bool
	HidePrelude bool

	LogLevel int
}

// logLevelNames maps --loglevel's accepted spellings to report's levels.
var logLevelNames = map[string]int{
	"silent":  report.LogLevelSilent,
	"error":   report.LogLevelError,
	"warn":    report.LogLevelWarn,
	"verbose": report.LogLevelVerbose,
}

type argParser struct {
	args []string
	ndx  int
}

func (p *argParser) done() bool {
	return p.ndx >= len(p.args)
}

func (p *argParser) advance() string {
	a := p.args[p.ndx]
	p.ndx++
	return a
}

// nextArg returns the argument following a value-taking flag, erroring if
// none is available.
func (p *argParser) nextArg(flag string) (string, error) {
	if p.done() {
		return "", fmt.Errorf("flag %s requires a value", flag)
	}
	return p.advance(), nil
}

// ParseArgs parses a pecco command line into Options. It accepts exactly
// one positional argument: the input source file.
func ParseArgs(args []string) (*Options, error) {
	opts := &Options{LogLevel: report.LogLevelError}
	p := &argParser{args: args}

	for !p.done() {
		a := p.advance()
		if len(a) > 0 && a[0] == '-' {
			if err := applyFlag(opts, p, a); err != nil {
				return nil, err
			}
			continue
		}

		if opts.InputFile != "" {
			return nil, fmt.Errorf("unexpected extra argument: %s", a)
		}
		opts.InputFile = a
	}

	if opts.InputFile == "" {
		return nil, fmt.Errorf("no input file given")
	}
	return opts, nil
}

func applyFlag(opts *Options, p *argParser, flag string) error {
	switch flag {
	case "--lex":
		opts.Lex = true
	case "--parse":
		opts.Parse = true
	case "--emit-llvm":
		opts.EmitLLVM = true
	case "--compile":
		opts.Compile = true
	case "--run":
		opts.Run = true
	case "--dump-ast":
		opts.DumpAST = true
	case "--dump-symbols":
		opts.DumpSymbols = true
	case "--hide-prelude":
		opts.HidePrelude = true
	case "-o":
		v, err := p.nextArg(flag)
		if err != nil {
			return err
		}
		opts.Output = v
	case "--loglevel":
		v, err := p.nextArg(flag)
		if err != nil {
			return err
		}
		level, ok := logLevelNames[v]
		if !ok {
			return fmt.Errorf("unrecognized --loglevel value: %s", v)
		}
		opts.LogLevel = level
	default:
		return fmt.Errorf("unrecognized flag: %s", flag)
	}
	return nil
}
