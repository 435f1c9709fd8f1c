package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/leocavalcante/vhp/harness"
	"github.com/leocavalcante/vhp/version"
)

func main() {
	app := &cli.Command{
		Name:  "vhp",
		Usage: "a demo front end for the vhp compiler and VM",
		Commands: []*cli.Command{
			demosCommand,
			runCommand,
			bytecodeCommand,
			replCommand,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "print the version and exit",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("version") {
				fmt.Println(version.Version())
				return nil
			}
			return runREPL()
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var demosCommand = &cli.Command{
	Name:  "demos",
	Usage: "list the available demo programs",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		names := demoNames()
		fmt.Println("Available demos:")
		for _, name := range names {
			fmt.Println("  " + name)
		}
		return nil
	},
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "compile and run one of the demo programs",
	ArgsUsage: "<demo-name>",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		name := cmd.Args().First()
		if name == "" {
			return fmt.Errorf("usage: vhp run <demo-name> (see `vhp demos`)")
		}
		return runDemo(name, os.Stdout)
	},
}

var bytecodeCommand = &cli.Command{
	Name:      "bytecode",
	Usage:     "compile one of the demo programs and dump its instruction listing",
	ArgsUsage: "<demo-name>",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		name := cmd.Args().First()
		if name == "" {
			return fmt.Errorf("usage: vhp bytecode <demo-name> (see `vhp demos`)")
		}
		return dumpBytecode(name, os.Stdout)
	},
}

var replCommand = &cli.Command{
	Name:  "repl",
	Usage: "start the interactive demo shell",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return runREPL()
	},
}

func runDemo(name string, out io.Writer) error {
	build, ok := demos[name]
	if !ok {
		return fmt.Errorf("no such demo %q (known demos: %s)", name, strings.Join(demoNames(), ", "))
	}
	result := harness.Run(build())
	fmt.Fprint(out, result.Output)
	if result.Err != nil {
		return result.Err
	}
	return nil
}
