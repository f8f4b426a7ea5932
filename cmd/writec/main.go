package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"writec/internal/compiler"
	"writec/internal/langdoc"
	"writec/internal/lexer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "build":
		os.Exit(buildCmd(os.Args[2:]))
	case "run":
		os.Exit(buildCmd(append([]string{"-run"}, os.Args[2:]...)))
	case "lex":
		os.Exit(lexCmd(os.Args[2:]))
	case "doctest":
		os.Exit(doctestCmd(os.Args[2:]))
	case "repl":
		os.Exit(replCmd(os.Args[2:]))
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  writec build <file.write> [-o <file.cpp>] [-compile] [-run] [-cc <compiler>] [-std <standard>] [-bin <path>]")
	fmt.Fprintln(os.Stderr, "  writec run <file.write> [flags]")
	fmt.Fprintln(os.Stderr, "  writec lex <file.write>")
	fmt.Fprintln(os.Stderr, "  writec doctest <doc.md> [doc.md...]")
	fmt.Fprintln(os.Stderr, "  writec repl")
}

func buildCmd(args []string) int {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	out := fs.String("o", "", "output .cpp file (default: input with .cpp extension)")
	compileFlag := fs.Bool("compile", false, "compile the generated C++ with the detected compiler")
	runFlag := fs.Bool("run", false, "run the binary after compiling (implies -compile)")
	cc := fs.String("cc", "", "C++ compiler executable (default: auto-detect g++ then clang++)")
	std := fs.String("std", "c++17", "C++ standard flag")
	bin := fs.String("bin", "", "output binary path (default: input without extension)")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "input file required")
		return 1
	}
	input := fs.Arg(0)
	if *runFlag {
		*compileFlag = true
	}

	outPath := *out
	if outPath == "" {
		outPath = trimExt(input) + ".cpp"
	}
	binPath := *bin
	if binPath == "" {
		binPath = trimExt(input)
		if runtime.GOOS == "windows" {
			binPath += ".exe"
		}
	}

	src, err := os.ReadFile(input)
	if err != nil {
		logError(fmt.Sprintf("file not found: %s", input))
		return 1
	}
	logStep("compiling")
	cpp, err := compiler.Compile(string(src))
	if err != nil {
		logError(err.Error())
		return 1
	}
	if err := os.WriteFile(outPath, []byte(cpp), 0644); err != nil {
		logError(err.Error())
		return 1
	}
	fmt.Printf("wrote %s\n", outPath)

	if !*compileFlag {
		return 0
	}
	compilerExe, err := chooseCompiler(*cc)
	if err != nil {
		logError(err.Error())
		return 1
	}
	logStep("compiling with " + compilerExe)
	if !nativeCompile(compilerExe, *std, outPath, binPath) {
		return 1
	}
	fmt.Printf("compiled -> %s\n", binPath)
	if *runFlag {
		logStep("running binary")
		return runBinary(binPath)
	}
	return 0
}

func lexCmd(args []string) int {
	fs := flag.NewFlagSet("lex", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "input file required")
		return 1
	}
	src, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		logError(fmt.Sprintf("file not found: %s", fs.Arg(0)))
		return 1
	}
	tokens, err := lexer.New(string(src)).Scan()
	if err != nil {
		fmt.Printf("lexer error: %s\n", err)
		return 1
	}
	for _, t := range tokens {
		fmt.Printf("%s\t%q\t(line %d)\n", t.Kind, t.Lexeme, t.Line)
	}
	return 0
}

// doctestCmd compiles every Write fence in the given Markdown documents.
// Fences tagged write-error must fail; all others must compile.
func doctestCmd(args []string) int {
	fs := flag.NewFlagSet("doctest", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "at least one markdown file required")
		return 1
	}
	failed := 0
	for _, path := range fs.Args() {
		doc, err := os.ReadFile(path)
		if err != nil {
			logError(fmt.Sprintf("file not found: %s", path))
			return 1
		}
		samples, err := langdoc.ExtractSamples(doc)
		if err != nil {
			logError(err.Error())
			return 1
		}
		for _, sample := range samples {
			_, err := compiler.Compile(sample.Source)
			switch {
			case sample.WantError && err == nil:
				fmt.Printf("FAIL %s:%d %s: expected an error, compiled cleanly\n", path, sample.Line, sample.Name)
				failed++
			case !sample.WantError && err != nil:
				fmt.Printf("FAIL %s:%d %s: %s\n", path, sample.Line, sample.Name, firstLine(err.Error()))
				failed++
			default:
				fmt.Printf("ok   %s:%d %s\n", path, sample.Line, sample.Name)
			}
		}
	}
	if failed > 0 {
		fmt.Printf("%d sample(s) failed\n", failed)
		return 1
	}
	return 0
}

func trimExt(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return path[:len(path)-len(ext)]
	}
	return path
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func chooseCompiler(preferred string) (string, error) {
	var candidates []string
	if preferred != "" {
		candidates = append(candidates, preferred)
	}
	candidates = append(candidates, "g++", "clang++")
	for _, cc := range candidates {
		if _, err := exec.LookPath(cc); err == nil {
			return cc, nil
		}
	}
	return "", fmt.Errorf("no C++ compiler found. Tried: %s. Install g++ or clang++, or pass -cc <path>", strings.Join(candidates, ", "))
}

func nativeCompile(cc, std, cppPath, binPath string) bool {
	cmd := exec.Command(cc, "-std="+std, cppPath, "-o", binPath)
	fmt.Println("compile:", strings.Join(cmd.Args, " "))
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		fmt.Print(string(out))
	}
	return err == nil
}

func runBinary(binPath string) int {
	if !filepath.IsAbs(binPath) && !strings.ContainsRune(binPath, os.PathSeparator) {
		binPath = "." + string(os.PathSeparator) + binPath
	}
	fmt.Printf("run: %s\n", binPath)
	cmd := exec.Command(binPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		logError(err.Error())
		return 1
	}
	return 0
}

func logStep(msg string) {
	fmt.Printf("[writec] %s...\n", msg)
}

func logError(msg string) {
	fmt.Printf("[writec:error] %s\n", msg)
}
