package convert

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/spf13/afero"

	"github.com/hashicorp-forge/syncman/internal/cmd/base"
	"github.com/hashicorp-forge/syncman/internal/config"
	"github.com/hashicorp-forge/syncman/pkg/oasconv"
	"github.com/hashicorp-forge/syncman/pkg/oasfile"
)

type Command struct {
	*base.Command

	flagLocation string
	flagOutput   string
	flagConfig   string
	flagName     string
	flagLogLevel string

	fs afero.Fs
}

func (c *Command) Synopsis() string {
	return "Convert an OAS file to a Postman collection without uploading it"
}

func (c *Command) Help() string {
	return `Usage: syncman convert -location=<oas file> [options]

  Convert an OpenAPI Specification (OAS) file to a Postman collection (v2.1)
  and print it, or write it to the file given with -output. Nothing is sent
  to Postman and no credentials are needed.

  Conversion options are read from the "conversion" block of the file given
  with -config.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("convert", flag.ContinueOnError))

	f.StringVarP(
		&c.flagLocation, "location", "l", "",
		"Open API Spec (OAS) file location",
	)
	f.StringVarP(
		&c.flagOutput, "output", "o", "",
		"Write the collection to this file instead of stdout",
	)
	f.StringVar(
		&c.flagConfig, "config", "",
		"Path to an HCL configuration file",
	)
	f.StringVar(
		&c.flagName, "name", "",
		"Collection name (default: the OAS title)",
	)
	f.StringVar(
		&c.flagLogLevel, "log-level", "warn",
		"Log level (trace, debug, info, warn, error)",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if c.flagLocation == "" {
		c.UI.Error(`Error: "location" option was not set, exiting`)
		return 1
	}

	log, err := c.ConfigureLogger(c.flagLogLevel, false)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error configuring logger: %v", err))
		return 1
	}

	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: c.flagConfig,
		Fs:         c.fs,
		Logger:     log,
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading configuration: %v", err))
		return 2
	}
	opts := cfg.ConversionOptions()
	if err := opts.Validate(); err != nil {
		c.UI.Error(fmt.Sprintf("invalid configuration: %v", err))
		return 2
	}

	doc, err := oasfile.Load(c.fs, c.flagLocation)
	if err != nil {
		c.UI.Error(fmt.Sprintf("No valid OAS file located in %q, aborting", c.flagLocation))
		return 2
	}

	result := oasconv.NewConverter(log).Convert(context.Background(), doc.Content, opts)
	if !result.OK {
		c.UI.Error(fmt.Sprintf("Could not convert: %s", result.Reason))
		return 1
	}

	collection := result.Collection
	if c.flagName != "" {
		collection = collection.WithName(c.flagName)
	}

	out, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		c.UI.Error(fmt.Sprintf("error encoding collection: %v", err))
		return 1
	}

	if c.flagOutput == "" {
		c.UI.Output(string(out))
		return 0
	}

	if err := afero.WriteFile(c.fs, c.flagOutput, append(out, '\n'), 0o644); err != nil {
		c.UI.Error(fmt.Sprintf("error writing collection: %v", err))
		return 1
	}
	c.UI.Info(fmt.Sprintf("Wrote %d requests to %s", len(collection.Requests()), c.flagOutput))

	return 0
}
