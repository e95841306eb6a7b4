package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/syncman/pkg/oasconv"
	"github.com/hashicorp-forge/syncman/pkg/postman"
)

const (
	// EnvAPIKey holds the Postman API key.
	EnvAPIKey = "POSTMAN_API_KEY"
	// EnvWorkspaceID holds the id of the target Postman workspace.
	EnvWorkspaceID = "POSTMAN_WORKSPACE_ID"

	// DefaultWebURL is the Postman web app.
	DefaultWebURL = "https://go.postman.co"
	// DefaultDotEnvFile is read from the working directory when present.
	DefaultDotEnvFile = ".env"
)

// Config is the configuration for syncman.
type Config struct {
	// Postman configures the Postman API client.
	Postman *Postman `hcl:"postman,block"`

	// Conversion configures the OAS to collection conversion.
	Conversion *Conversion `hcl:"conversion,block"`

	// APIKey and WorkspaceID come from the environment only.
	APIKey      string
	WorkspaceID string
}

// Postman configures the Postman API client.
type Postman struct {
	// BaseURL is the Postman API endpoint.
	BaseURL string `hcl:"base_url,optional"`

	// WebURL is the Postman web app, used to build links.
	WebURL string `hcl:"web_url,optional"`

	// Timeout is the per-request timeout, e.g. "30s".
	Timeout string `hcl:"timeout,optional"`

	// TLSVerify controls TLS certificate verification.
	TLSVerify *bool `hcl:"tls_verify,optional"`
}

// Conversion configures the OAS to collection conversion.
type Conversion struct {
	// FolderStrategy is "Tags" or "Paths".
	FolderStrategy string `hcl:"folder_strategy,optional"`

	// SchemaFaker generates example bodies from schemas.
	SchemaFaker *bool `hcl:"schema_faker,optional"`

	// RequestParametersResolution is "Example" or "Schema".
	RequestParametersResolution string `hcl:"request_parameters_resolution,optional"`
}

// MissingSecretError is returned when a required environment variable is
// not set.
type MissingSecretError struct {
	Name string
}

func (e *MissingSecretError) Error() string {
	return fmt.Sprintf("%s environment variable was not set", e.Name)
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigFile is an optional HCL configuration file.
	ConfigFile string

	// DotEnvFile is read when it exists. Variables already present in the
	// environment take precedence.
	DotEnvFile string

	// Fs is the filesystem for ConfigFile and DotEnvFile. Default: OS.
	Fs afero.Fs

	// LookupEnv reads the environment. Default: os.LookupEnv.
	LookupEnv func(string) (string, bool)

	Logger hclog.Logger
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	tlsVerify := true
	schemaFaker := true
	defaults := oasconv.DefaultOptions()

	return &Config{
		Postman: &Postman{
			BaseURL:   postman.DefaultBaseURL,
			WebURL:    DefaultWebURL,
			Timeout:   "30s",
			TLSVerify: &tlsVerify,
		},
		Conversion: &Conversion{
			FolderStrategy:              string(defaults.FolderStrategy),
			SchemaFaker:                 &schemaFaker,
			RequestParametersResolution: string(defaults.RequestParametersResolution),
		},
	}
}

// Load builds the configuration from defaults, the optional HCL file, the
// optional .env file and the environment. The result is not validated.
func Load(opts LoadOptions) (*Config, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	cfg := NewConfig()

	if opts.ConfigFile != "" {
		src, err := afero.ReadFile(opts.Fs, opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		var fileCfg Config
		if err := hclsimple.Decode(opts.ConfigFile, src, nil, &fileCfg); err != nil {
			return nil, fmt.Errorf("error decoding config file: %w", err)
		}
		cfg.merge(&fileCfg)
		opts.Logger.Debug("loaded config file", "path", opts.ConfigFile)
	}

	dotenv, err := readDotEnv(opts.Fs, opts.DotEnvFile)
	if err != nil {
		return nil, err
	}
	if len(dotenv) > 0 {
		opts.Logger.Debug("loaded dotenv file", "path", opts.DotEnvFile, "variables", len(dotenv))
	}

	lookup := func(key string) string {
		if v, ok := opts.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
	cfg.APIKey = lookup(EnvAPIKey)
	cfg.WorkspaceID = lookup(EnvWorkspaceID)

	return cfg, nil
}

func readDotEnv(fs afero.Fs, path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("error opening dotenv file: %w", err)
	}
	defer f.Close()

	env, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("error parsing dotenv file %q: %w", path, err)
	}
	return env, nil
}

// merge overlays values set in other onto c.
func (c *Config) merge(other *Config) {
	if p := other.Postman; p != nil {
		if p.BaseURL != "" {
			c.Postman.BaseURL = p.BaseURL
		}
		if p.WebURL != "" {
			c.Postman.WebURL = p.WebURL
		}
		if p.Timeout != "" {
			c.Postman.Timeout = p.Timeout
		}
		if p.TLSVerify != nil {
			c.Postman.TLSVerify = p.TLSVerify
		}
	}
	if conv := other.Conversion; conv != nil {
		if conv.FolderStrategy != "" {
			c.Conversion.FolderStrategy = conv.FolderStrategy
		}
		if conv.SchemaFaker != nil {
			c.Conversion.SchemaFaker = conv.SchemaFaker
		}
		if conv.RequestParametersResolution != "" {
			c.Conversion.RequestParametersResolution = conv.RequestParametersResolution
		}
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validation.Validate(c.APIKey, validation.Required); err != nil {
		result = multierror.Append(result, &MissingSecretError{Name: EnvAPIKey})
	}
	if err := validation.Validate(c.WorkspaceID, validation.Required); err != nil {
		result = multierror.Append(result, &MissingSecretError{Name: EnvWorkspaceID})
	}

	if err := validation.ValidateStruct(c.Postman,
		validation.Field(&c.Postman.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Postman.WebURL, validation.Required, is.URL),
		validation.Field(&c.Postman.Timeout, validation.Required, validation.By(positiveDuration)),
	); err != nil {
		result = multierror.Append(result, fmt.Errorf("postman: %w", err))
	}

	if err := validation.ValidateStruct(c.Conversion,
		validation.Field(&c.Conversion.FolderStrategy, validation.Required,
			validation.In(string(oasconv.FolderStrategyTags), string(oasconv.FolderStrategyPaths))),
		validation.Field(&c.Conversion.RequestParametersResolution, validation.Required,
			validation.In(string(oasconv.ResolutionExample), string(oasconv.ResolutionSchema))),
	); err != nil {
		result = multierror.Append(result, fmt.Errorf("conversion: %w", err))
	}

	return result.ErrorOrNil()
}

func positiveDuration(value interface{}) error {
	s, _ := value.(string)
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("must be a duration such as \"30s\"")
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

// PostmanConfig returns the client configuration. Validate must have
// succeeded.
func (c *Config) PostmanConfig(logger hclog.Logger) *postman.Config {
	timeout, _ := time.ParseDuration(c.Postman.Timeout)
	return &postman.Config{
		BaseURL:     c.Postman.BaseURL,
		APIKey:      c.APIKey,
		WorkspaceID: c.WorkspaceID,
		TLSVerify:   c.Postman.TLSVerify,
		Timeout:     timeout,
		Logger:      logger,
	}
}

// ConversionOptions returns the converter options.
func (c *Config) ConversionOptions() oasconv.Options {
	return oasconv.Options{
		FolderStrategy:              oasconv.FolderStrategy(c.Conversion.FolderStrategy),
		SchemaFaker:                 c.Conversion.SchemaFaker == nil || *c.Conversion.SchemaFaker,
		RequestParametersResolution: oasconv.ParameterResolution(c.Conversion.RequestParametersResolution),
	}
}

// APIPageURL links to an API in the Postman web app.
func (c *Config) APIPageURL(apiID string) string {
	return fmt.Sprintf("%s/workspace/%s/api/%s", c.Postman.WebURL, c.WorkspaceID, apiID)
}
