package sync

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/browser"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/syncman/internal/cmd/base"
	"github.com/hashicorp-forge/syncman/internal/config"
	"github.com/hashicorp-forge/syncman/pkg/oasconv"
	"github.com/hashicorp-forge/syncman/pkg/oasfile"
	"github.com/hashicorp-forge/syncman/pkg/postman"
	"github.com/hashicorp-forge/syncman/pkg/syncer"
)

const (
	exitOK     = 0
	exitError  = 1
	exitConfig = 2
)

type Command struct {
	*base.Command

	flagLocation    string
	flagAPIName     string
	flagVersionName string
	flagConfig      string
	flagDotEnv      string
	flagOpen        bool
	flagLogLevel    string
	flagLogJSON     bool

	// Overridden in tests.
	fs        afero.Fs
	lookupEnv func(string) (string, bool)
	openURL   func(string) error
}

func (c *Command) Synopsis() string {
	return "Sync an OAS file with a Postman API and regenerate its collection"
}

func (c *Command) Help() string {
	return `Usage: syncman sync -location=<oas file> -apiname=<api name> [options]

  Upload an OpenAPI Specification (OAS) file to a Postman API version and
  regenerate the documentation collection from it. The API, the version and
  the collection are created on the first run and updated afterwards.

  The POSTMAN_API_KEY and POSTMAN_WORKSPACE_ID environment variables are
  required. They are also read from a .env file in the working directory.

  "sync" is the default subcommand:

    syncman -location=openapi.yaml -apiname=Orders -versionname=v1` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("sync", flag.ContinueOnError))

	f.StringVarP(
		&c.flagLocation, "location", "l", "",
		"Open API Spec (OAS) file location",
	)
	f.StringVarP(
		&c.flagAPIName, "apiname", "a", "",
		"API name",
	)
	f.StringVarP(
		&c.flagVersionName, "versionname", "v", syncer.DefaultVersionName,
		"API version name",
	)
	f.StringVar(
		&c.flagConfig, "config", "",
		"Path to an HCL configuration file",
	)
	f.StringVar(
		&c.flagDotEnv, "dotenv", config.DefaultDotEnvFile,
		"Path to a .env file, read when it exists",
	)
	f.BoolVar(
		&c.flagOpen, "open", false,
		"Open the API in the Postman web app after a successful sync",
	)
	f.StringVar(
		&c.flagLogLevel, "log-level", "info",
		"Log level (trace, debug, info, warn, error)",
	)
	f.BoolVar(
		&c.flagLogJSON, "log-json", false,
		"Output logs in JSON format",
	)

	return f
}

func (c *Command) Run(args []string) int {
	if len(args) == 0 {
		c.UI.Output(c.Help())
		c.UI.Error("Error: no options were selected, exiting")
		return exitError
	}

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return exitError
	}

	if c.flagAPIName == "" || c.flagLocation == "" {
		c.UI.Error(`Error: "apiname" or "location" options were not set, exiting`)
		return exitError
	}

	log, err := c.ConfigureLogger(c.flagLogLevel, c.flagLogJSON)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error configuring logger: %v", err))
		return exitError
	}

	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	if c.openURL == nil {
		c.openURL = browser.OpenURL
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: c.flagConfig,
		DotEnvFile: c.flagDotEnv,
		Fs:         c.fs,
		LookupEnv:  c.lookupEnv,
		Logger:     log,
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading configuration: %v", err))
		return exitConfig
	}
	if err := cfg.Validate(); err != nil {
		c.reportConfigErrors(err)
		return exitConfig
	}

	doc, err := oasfile.Load(c.fs, c.flagLocation)
	if err != nil {
		log.Debug("error reading OAS file", "error", err)
		c.UI.Error(fmt.Sprintf("No valid OAS file located in %q, aborting", c.flagLocation))
		return exitConfig
	}
	log.Debug("OAS file loaded",
		"path", doc.Path,
		"format", doc.Format,
		"title", doc.Title,
		"oas_version", doc.Version,
	)

	client, err := postman.NewClient(cfg.PostmanConfig(log))
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating Postman client: %v", err))
		return exitConfig
	}

	s, err := syncer.New(syncer.Config{
		APIName:     c.flagAPIName,
		VersionName: c.flagVersionName,
		OASContent:  doc.Content,
		Conversion:  cfg.ConversionOptions(),
		Logger:      log,
	}, client, oasconv.NewConverter(log))
	if err != nil {
		c.UI.Error(err.Error())
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := s.Run(ctx)
	if err != nil {
		c.UI.Error(err.Error())
		return exitError
	}

	if report.Skipped {
		c.UI.Warn(fmt.Sprintf("Could not convert, skipping collections update: %s", report.SkipReason))
		return exitOK
	}

	c.UI.Output(color.GreenString("Synced API %q with version %q successfully",
		c.flagAPIName, c.flagVersionName))

	if c.flagOpen {
		pageURL := cfg.APIPageURL(report.APIID)
		if err := c.openURL(pageURL); err != nil {
			c.UI.Warn(fmt.Sprintf("could not open browser, visit %s", pageURL))
		}
	}

	return exitOK
}

func (c *Command) reportConfigErrors(err error) {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		c.UI.Error(err.Error())
		return
	}

	for _, e := range merr.Errors {
		var missing *config.MissingSecretError
		if errors.As(e, &missing) {
			c.UI.Error(fmt.Sprintf("%s, aborting", missing))
			continue
		}
		c.UI.Error(fmt.Sprintf("invalid configuration: %v", e))
	}
}
