package cmd

import (
	"bufio"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/syncman/internal/version"
)

// Main runs the CLI with the given arguments and returns the exit code.
func Main(args []string) int {
	cliName := args[0]

	log := hclog.New(&hclog.LoggerOptions{
		Name:   cliName,
		Output: os.Stderr,
		Color:  hclog.AutoColor,
	})

	if len(args) == 2 && args[1] == "-version" {
		args = []string{cliName, "version"}
	}

	// Flags without a subcommand, or no arguments at all, go to 'sync'.
	if len(args) == 1 || isSyncFlag(args[1]) {
		args = append([]string{cliName, "sync"}, args[1:]...)
	}

	ui := &cli.ColoredUi{
		OutputColor: cli.UiColorNone,
		InfoColor:   cli.UiColorNone,
		ErrorColor:  cli.UiColorRed,
		WarnColor:   cli.UiColorYellow,
		Ui: &cli.BasicUi{
			Reader:      bufio.NewReader(os.Stdin),
			Writer:      color.Output,
			ErrorWriter: color.Error,
		},
	}

	initCommands(log, ui)

	c := &cli.CLI{
		Name:     cliName,
		Args:     args[1:],
		Version:  version.Full(),
		Commands: Commands,
	}

	// Run the CLI
	exitCode, err := c.Run()
	if err != nil {
		panic(err)
	}

	return exitCode
}

func isSyncFlag(arg string) bool {
	if !strings.HasPrefix(arg, "-") {
		return false
	}
	switch arg {
	case "-h", "-help", "--help", "-version", "--version":
		return false
	}
	return true
}
