package version

import (
	"fmt"

	"github.com/hashicorp-forge/syncman/internal/cmd/base"
	"github.com/hashicorp-forge/syncman/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version of the binary"
}

func (c *Command) Help() string {
	return `Usage: syncman version

  This command prints the version of the binary.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output(fmt.Sprintf("syncman %s", version.Full()))
	return 0
}
