package report

import (
	"strings"

	"github.com/pterm/pterm"
)

// print renders one diagnostic to the terminal, honoring the reporter's
// configured log level.
func (r *Reporter) print(d Diagnostic) {
	if d.Warning {
		if r.level < LogLevelWarn {
			return
		}
	} else if r.level < LogLevelError {
		return
	}

	kind := "error"
	printer := pterm.Error
	if d.Warning {
		kind = "warning"
		printer = pterm.Warning
	}

	path := d.Path
	if path == "" {
		path = r.path
	}

	header := pterm.Sprintf("%s %s at %s:%d:%d: %s", d.Stage, kind, path, d.Line, d.Col, d.Message)
	printer.Println(header)

	if r.source != "" {
		printSourceLine(r.source, d)
	}
}

// printSourceLine renders the offending source line with a caret (point
// errors) or a tilde-underlined span, placing the caret at the exact
// offending byte when ErrorOffset is non-zero.
func printSourceLine(source string, d Diagnostic) {
	lines := strings.Split(source, "\n")
	if d.Line < 1 || d.Line > len(lines) {
		return
	}
	line := lines[d.Line-1]

	gutter := pterm.Sprintf(" %d | ", d.Line)
	pterm.Println(gutter + line)

	pad := strings.Repeat(" ", len(gutter)+max0(d.Col-1))

	if d.EndCol <= d.Col+1 {
		pterm.Println(pad + pterm.Red("^"))
		return
	}

	span := d.EndCol - d.Col
	underline := strings.Repeat("~", span)
	caretIdx := 0
	if d.ErrorOffset > 0 {
		caretIdx = d.ErrorOffset
	}
	if caretIdx >= 0 && caretIdx < len(underline) {
		b := []byte(underline)
		b[caretIdx] = '^'
		underline = string(b)
	}
	pterm.Println(pad + pterm.Red(underline))
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Phase tracking: a colored banner at start, a spinner per pipeline phase,
// and a colored summary line at the end.

func DisplayBanner(version string) {
	pterm.DefaultBigText.WithLetters(pterm.NewLettersFromStringWithStyle("pecco", pterm.NewStyle(pterm.FgCyan))).Render()
	pterm.Info.Println("version " + version)
}

func (r *Reporter) BeginPhase(name string) {
	if r.level < LogLevelVerbose {
		return
	}
	r.spinner, _ = pterm.DefaultSpinner.Start(name)
}

func (r *Reporter) EndPhase() {
	if r.spinner == nil {
		return
	}
	if r.ErrorCount() > 0 {
		r.spinner.Fail()
	} else {
		r.spinner.Success()
	}
	r.spinner = nil
}

func (r *Reporter) DisplayCompilationFinished(outputPath string) {
	if r.level < LogLevelError {
		return
	}
	ec, wc := r.ErrorCount(), r.WarningCount()
	if ec > 0 {
		pterm.Error.Printfln("compilation failed: %d error(s), %d warning(s)", ec, wc)
		return
	}
	pterm.Success.Printfln("compiled %s (%d warning(s))", outputPath, wc)
}

func DisplayInfoMessage(title, message string) {
	pterm.Info.Printfln("%s: %s", title, message)
}
