package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
)

// runREPL drives the menu-style demo shell: there's no lexer/parser in this
// repository (SPEC_FULL.md §1), so typed input can only name one of the
// pre-built demos rather than arbitrary PHP source.
func runREPL() error {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		fmt.Println("vhp interactive demo shell. Type a demo name (see `list`), or `exit`.")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "vhp> ",
		HistoryFile:     historyFilePath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("starting readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		name := strings.TrimSpace(line)
		switch name {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "list":
			for _, n := range demoNames() {
				fmt.Println("  " + n)
			}
		default:
			if err := runDemo(name, os.Stdout); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
		}
	}
}

// historyFilePath keeps readline's history out of the current directory;
// an empty string (no persistent history) is an acceptable fallback when
// the home directory can't be resolved.
func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.vhp_history"
}
