// Command qi is the file-or-REPL driver for the interpreter: it reads a
// source file (or, with no argument, reads lines from stdin), compiles and
// runs them against a single VM, and maps the result to a process exit
// code.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	qi "github.com/xirelogy/go-qi"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file overriding VM resource limits")
	compileFlag := flag.String("compile", "", "compile the given file to a bytecode cache at this path and exit")
	runCompiledFlag := flag.String("run-compiled", "", "run a previously compiled bytecode cache instead of compiling source")
	verboseFlag := flag.Bool("v", false, "enable debug-level logging")
	flag.Parse()

	qi.SetVerboseLogging(*verboseFlag)
	logger := qi.NewLogger("cmd/qi")

	cfg := qi.DefaultConfig()
	if *configPath != "" {
		loaded, err := qi.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "qi: reading config: %s\n", err)
			os.Exit(64)
		}
		cfg = loaded
	}

	v := qi.New(cfg, logger)
	defer v.Close()

	switch {
	case *compileFlag != "" && flag.NArg() == 1:
		dumpBytecode(v, flag.Arg(0), *compileFlag)
	case *runCompiledFlag != "":
		runCompiledFile(v, *runCompiledFlag)
	case flag.NArg() == 1:
		runFile(v, flag.Arg(0))
	case flag.NArg() == 0:
		runRepl(v)
	default:
		fmt.Fprintln(os.Stderr, "usage: qi [-config file] [-v] [-compile out|-run-compiled in] [script]")
		os.Exit(64)
	}
}

func dumpBytecode(v *qi.VM, srcPath, outPath string) {
	source, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qi: %s\n", err)
		os.Exit(74)
	}
	data, err := v.CompileToBytes(string(source))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(65)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "qi: %s\n", err)
		os.Exit(74)
	}
}

func runCompiledFile(v *qi.VM, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qi: %s\n", err)
		os.Exit(74)
	}
	fn, err := v.LoadCompiled(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(65)
	}
	result, err := v.RunCompiled(fn)
	exitFor(result, err)
}

func runFile(v *qi.VM, path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qi: %s\n", err)
		os.Exit(74)
	}
	result, err := v.Interpret(string(source))
	exitFor(result, err)
}

func runRepl(v *qi.VM) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("qi (Ctrl+D to exit)")
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return
			}
			fmt.Fprintf(os.Stderr, "qi: %s\n", err)
			return
		}
		if _, err := v.Interpret(line); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func exitFor(result qi.InterpretResult, err error) {
	switch result {
	case qi.InterpretOK:
		return
	case qi.InterpretCompileError:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(65)
	case qi.InterpretRuntimeError:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(70)
	}
}
