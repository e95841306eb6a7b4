package main

import (
	"os"

	"github.com/hashicorp-forge/syncman/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
