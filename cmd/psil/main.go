// psil is the command-line driver for the PSIL interpreter: it reads a
// source file, a -e expression, or drops into a REPL, evaluating forms
// through the same read -> macro-expand -> evaluate pipeline the
// library exposes.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gopsil/psil/pkg/printer"
	"github.com/gopsil/psil/pkg/psil"
	"github.com/gopsil/psil/pkg/value"
)

var flagExpr = flag.String("e", "", "evaluate a single expression and print its result")

func main() {
	flag.Parse()

	interp, err := psil.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: installing standard macros: %v\n", err)
		os.Exit(1)
	}

	if *flagExpr != "" {
		v, err := evalNamed(interp, *flagExpr, "-e")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(printer.External(v))
		return
	}

	if args := flag.Args(); len(args) > 0 {
		for _, filename := range args {
			if err := runFile(interp, filename); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	runREPL(interp)
}

func runFile(interp *psil.Interpreter, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}
	src := string(data)
	if strings.HasPrefix(src, "#!") {
		if idx := strings.IndexByte(src, '\n'); idx >= 0 {
			src = src[idx+1:]
		} else {
			src = ""
		}
	}
	_, err = evalNamed(interp, src, filename)
	return err
}

// evalNamed wraps Interpreter.EvalString with the filename/source
// context in any resulting error.
func evalNamed(interp *psil.Interpreter, src, name string) (value.Value, error) {
	v, err := interp.EvalString(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// runREPL reads lines from stdin, accumulating them while parentheses
// are unbalanced, and evaluates each complete form as it completes.
// `:`-prefixed lines are meta-commands handled before any parsing;
// `(quit)` exits too.
func runREPL(interp *psil.Interpreter) {
	defineQuit(interp)

	in := bufio.NewReader(os.Stdin)
	buf := ""
	depth := 0
	for {
		if buf == "" {
			fmt.Print("psil> ")
		} else {
			fmt.Print("....> ")
		}
		line, err := in.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		if buf == "" {
			if handled := handleCommand(&interp, line); handled {
				continue
			}
		}
		for _, ch := range line {
			switch ch {
			case '(':
				depth++
			case ')':
				depth--
			}
		}
		buf += line
		if depth > 0 {
			continue
		}
		depth = 0
		if strings.TrimSpace(buf) == "" {
			buf = ""
			continue
		}
		v, err := evalNamed(interp, buf, "<repl>")
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		} else {
			fmt.Println(printer.External(v))
		}
		buf = ""
	}
}

func defineQuit(interp *psil.Interpreter) {
	interp.Scope.Define("quit", &value.Builtin{Name: "quit", Fn: func(interface{}, []value.Value) (value.Value, error) {
		os.Exit(0)
		return value.Nil, nil
	}})
}

// handleCommand processes `:`-prefixed REPL meta-commands. It returns
// true when line was consumed as a command. :clear swaps in a fresh
// interpreter, which is why interp is passed by pointer.
func handleCommand(interp **psil.Interpreter, line string) bool {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == ":help" || trimmed == ":h" || trimmed == ":?":
		printHelp()
		return true

	case trimmed == ":quit" || trimmed == ":q" || trimmed == ":exit":
		fmt.Println("Goodbye!")
		os.Exit(0)

	case trimmed == ":clear" || trimmed == ":c":
		fresh, err := psil.New()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return true
		}
		defineQuit(fresh)
		*interp = fresh
		fmt.Println("Definitions cleared.")
		return true

	case trimmed == ":words" || trimmed == ":w":
		printWords(*interp)
		return true

	case strings.HasPrefix(trimmed, ":load ") || strings.HasPrefix(trimmed, ":l "):
		parts := strings.Fields(trimmed)
		if len(parts) < 2 {
			fmt.Println("Usage: :load <filename>")
			return true
		}
		if err := runFile(*interp, parts[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return true
	}

	// Anything else falls through to ordinary evaluation; a bare
	// `:keyword` is a PSIL expression, not a command.
	return false
}

func printHelp() {
	fmt.Println(`Commands:
  :help, :h, :?      Show this help
  :quit, :q, :exit   Exit the REPL
  :clear, :c         Discard all definitions and start fresh
  :words, :w         List bound names in the root scope
  :load <file>, :l   Read and evaluate a source file

Anything else is read as PSIL; (quit) also exits.`)
}

func printWords(interp *psil.Interpreter) {
	names := interp.Scope.Names()
	for i, n := range names {
		if i > 0 && i%8 == 0 {
			fmt.Println()
		}
		fmt.Printf("%-9s ", n)
	}
	fmt.Println()
}
