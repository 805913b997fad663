package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	llvmtypes "github.com/llir/llvm/ir/types"

	"pecco/codegen"
	"pecco/report"
)

// addMainWrapper gives the module a conventional C-ABI `main` that calls
// the synthetic entry function and forwards its result, mirroring
// addMainWrapper in the reference driver. A no-op if the entry function is
// somehow absent (codegen always emits it, so this only guards against a
// malformed module reaching this stage).
func addMainWrapper(mod *ir.Module) {
	var entry *ir.Func
	for _, fn := range mod.Funcs {
		if fn.GlobalIdent.Name() == codegen.EntryFuncName {
			entry = fn
			break
		}
	}
	if entry == nil {
		return
	}

	main := mod.NewFunc("main", llvmtypes.I32)
	main.Linkage = enum.LinkageExternal
	block := main.NewBlock("entry")
	result := block.NewCall(entry)
	block.NewRet(result)
}

// compileModule writes mod's textual IR to a temp file and invokes clang to
// assemble it, either to an object file (objOnly) or a linked executable.
// llir/llvm is a pure text-emission library with no target-machine or
// object-writer of its own, unlike the reference compiler's native LLVM
// bindings; shelling out to clang on the generated .ll text is this
// repository's equivalent of original_source's compileToObject +
// `cc`-invoking link step.
func compileModule(mod *ir.Module, outputPath string, objOnly bool) error {
	clang, err := exec.LookPath("clang")
	if err != nil {
		return fmt.Errorf("clang not found (need clang to assemble generated LLVM IR): %w", err)
	}

	irFile, err := os.CreateTemp("", "pecco-*.ll")
	if err != nil {
		return fmt.Errorf("creating temp IR file: %w", err)
	}
	irPath := irFile.Name()
	defer os.Remove(irPath)

	if _, err := irFile.WriteString(mod.String()); err != nil {
		irFile.Close()
		return fmt.Errorf("writing IR to temp file: %w", err)
	}
	irFile.Close()

	args := []string{irPath, "-o", outputPath}
	if objOnly {
		args = append(args, "-c")
	} else {
		args = append(args, "-no-pie")
	}

	cmd := exec.Command(clang, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("clang failed: %s", string(out))
	}
	return nil
}

// compileLinkRun compiles and links mod to exeFile (moduleName unless an
// explicit -o was given). If run is true it then executes the result and
// propagates the child's exit code; if no explicit output path was given,
// the executable is removed afterward either way, matching the reference
// driver's transient-artifact handling.
func compileLinkRun(rep *report.Reporter, mod *ir.Module, moduleName, explicitOutput string, run bool) (int, error) {
	addMainWrapper(mod)

	exePath := explicitOutput
	if exePath == "" {
		exePath = moduleName
	}

	if err := compileModule(mod, exePath, false); err != nil {
		return 1, err
	}
	rep.DisplayCompilationFinished(exePath)

	if !run {
		return 0, nil
	}

	absExe, err := filepath.Abs(exePath)
	if err != nil {
		absExe = exePath
	}
	runCmd := exec.Command(absExe)
	runCmd.Stdout = os.Stdout
	runCmd.Stderr = os.Stderr
	runCmd.Stdin = os.Stdin
	runErr := runCmd.Run()

	if explicitOutput == "" {
		os.Remove(exePath)
	}

	if exitErr, ok := runErr.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	if runErr != nil {
		return 1, fmt.Errorf("running compiled program: %w", runErr)
	}
	return 0, nil
}
