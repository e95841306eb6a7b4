package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/syncman/internal/cmd/base"
	"github.com/hashicorp-forge/syncman/internal/cmd/commands/convert"
	"github.com/hashicorp-forge/syncman/internal/cmd/commands/sync"
	"github.com/hashicorp-forge/syncman/internal/cmd/commands/version"
)

// Commands is the mapping of all available syncman commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := &base.Command{
		Log: log,
		UI:  ui,
	}

	Commands = map[string]cli.CommandFactory{
		"sync": func() (cli.Command, error) {
			return &sync.Command{Command: b}, nil
		},
		"convert": func() (cli.Command, error) {
			return &convert.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
