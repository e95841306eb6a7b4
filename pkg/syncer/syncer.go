// Package syncer drives the upload of an OAS file to Postman: it upserts the
// API, the API version and its schema, then regenerates the documentation
// collection from the file.
package syncer

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/syncman/pkg/oasconv"
	"github.com/hashicorp-forge/syncman/pkg/postman"
)

const (
	// DefaultVersionName is used when no version name is configured.
	DefaultVersionName = "Latest"

	generatedSuffix = " [Generated]"
)

var (
	// ErrWorkspaceNotFound is returned by Setup when the configured workspace
	// does not exist or the API key cannot access it.
	ErrWorkspaceNotFound = errors.New("workspace does not exist or you are not allowed to use it")

	// ErrNotUploaded is returned by UpdateCollection when UploadOAS has not
	// completed.
	ErrNotUploaded = errors.New("UploadOAS must be called before UpdateCollection")

	// ErrNoCollection is returned by UpdateCollection when the upload did not
	// yield a documentation collection to update.
	ErrNoCollection = errors.New("no documentation collection is linked to the API version")
)

// Remote is the subset of the Postman API used by the Syncer.
// *postman.Client implements it.
type Remote interface {
	GetWorkspace(ctx context.Context) (*postman.Workspace, error)
	FindAPIByName(ctx context.Context, name string) (*postman.API, error)
	CreateAPI(ctx context.Context, name string) (*postman.API, error)
	GetAPIVersionByName(ctx context.Context, apiID, name string) (*postman.APIVersion, error)
	GetAPIVersionByID(ctx context.Context, apiID, versionID string) (*postman.APIVersion, error)
	CreateAPIVersion(ctx context.Context, apiID, name string) (*postman.APIVersion, error)
	CreateSchema(ctx context.Context, apiID, versionID, content string) (*postman.Schema, error)
	UpdateSchema(ctx context.Context, apiID, versionID, schemaID, content string) (*postman.Schema, error)
	CreateCollectionFromSchema(ctx context.Context, apiID, versionID, schemaID, name string) (*postman.SchemaCollection, error)
	GetDocumentationCollectionID(ctx context.Context, apiID, versionID string) (string, error)
	UpdateCollection(ctx context.Context, collectionID string, collection interface{}) (*postman.Collection, error)
}

// Converter turns OAS text into a Postman collection.
// *oasconv.Converter implements it.
type Converter interface {
	Convert(ctx context.Context, spec string, opts oasconv.Options) oasconv.Result
}

// Config holds the inputs of one sync run.
type Config struct {
	// APIName is the user supplied API name, before the generated suffix.
	APIName string

	// VersionName is the API version to upsert. Default: "Latest".
	VersionName string

	// OASContent is the full text of the OAS file. Empty content is passed
	// through and reported as a skipped conversion.
	OASContent string

	// Conversion configures the collection conversion.
	Conversion oasconv.Options

	Logger hclog.Logger
}

// Validate validates the sync configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.APIName, validation.Required),
		validation.Field(&c.VersionName, validation.Required),
	)
}

// SchemaAction records which branch the schema upsert took.
type SchemaAction string

const (
	SchemaCreated SchemaAction = "created"
	SchemaUpdated SchemaAction = "updated"
)

// Report describes what a run did.
type Report struct {
	RunID string

	APIID      string
	APICreated bool

	VersionID      string
	VersionCreated bool

	SchemaID     string
	SchemaAction SchemaAction

	CollectionID      string
	CollectionCreated bool
	CollectionName    string

	// Skipped is set when the collection update was skipped because the OAS
	// file could not be converted.
	Skipped    bool
	SkipReason string
}

// Syncer uploads an OAS file to a Postman API version and regenerates its
// documentation collection.
type Syncer struct {
	remote    Remote
	converter Converter
	logger    hclog.Logger

	apiName     string
	versionName string
	oasContent  string
	conversion  oasconv.Options

	uploaded bool
	report   Report
}

// New creates a Syncer. The configuration is validated once here.
func New(cfg Config, remote Remote, converter Converter) (*Syncer, error) {
	if cfg.VersionName == "" {
		cfg.VersionName = DefaultVersionName
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sync configuration: %w", err)
	}
	if err := cfg.Conversion.Validate(); err != nil {
		return nil, fmt.Errorf("invalid conversion options: %w", err)
	}
	if remote == nil {
		return nil, errors.New("remote is required")
	}
	if converter == nil {
		return nil, errors.New("converter is required")
	}

	runID := uuid.NewString()
	return &Syncer{
		remote:      remote,
		converter:   converter,
		logger:      cfg.Logger.Named("syncer").With("run_id", runID),
		apiName:     GeneratedName(cfg.APIName),
		versionName: cfg.VersionName,
		oasContent:  cfg.OASContent,
		conversion:  cfg.Conversion,
		report:      Report{RunID: runID},
	}, nil
}

// GeneratedName appends the marker suffix used on every artifact the tool
// creates. API lookups by name rely on the suffix staying stable.
func GeneratedName(name string) string {
	return name + generatedSuffix
}

// Report returns what the run has done so far.
func (s *Syncer) Report() Report {
	return s.report
}

// Run executes Setup, UploadOAS and UpdateCollection in order.
func (s *Syncer) Run(ctx context.Context) (Report, error) {
	if err := s.Setup(ctx); err != nil {
		return s.report, err
	}
	if err := s.UploadOAS(ctx); err != nil {
		return s.report, err
	}
	if err := s.UpdateCollection(ctx); err != nil {
		return s.report, err
	}

	s.logger.Info("sync finished",
		"api_id", s.report.APIID,
		"api_created", s.report.APICreated,
		"version_id", s.report.VersionID,
		"version_created", s.report.VersionCreated,
		"schema_id", s.report.SchemaID,
		"schema", s.report.SchemaAction,
		"collection_id", s.report.CollectionID,
		"collection_created", s.report.CollectionCreated,
		"skipped", s.report.Skipped,
	)
	return s.report, nil
}

// Setup verifies that the target workspace exists.
func (s *Syncer) Setup(ctx context.Context) error {
	ws, err := s.remote.GetWorkspace(ctx)
	if err != nil {
		return fmt.Errorf("error getting workspace: %w", err)
	}
	if ws == nil {
		return ErrWorkspaceNotFound
	}

	s.logger.Debug("workspace found", "workspace_id", ws.ID, "workspace", ws.Name)
	return nil
}

// UploadOAS upserts the API, the API version and its schema, and makes sure
// a documentation collection is linked to the version.
func (s *Syncer) UploadOAS(ctx context.Context) error {
	apiID, err := s.upsertAPI(ctx)
	if err != nil {
		return err
	}

	versionID, err := s.upsertAPIVersion(ctx, apiID)
	if err != nil {
		return err
	}

	collectionID, err := s.upsertSchemaAndGenerateDocCollection(ctx, apiID, versionID)
	if err != nil {
		return err
	}

	s.report.CollectionID = collectionID
	s.uploaded = true
	return nil
}

// UpdateCollection converts the OAS file and overwrites the documentation
// collection with the result, named after the API. A conversion failure is not an error: the
// update is skipped and recorded in the report.
func (s *Syncer) UpdateCollection(ctx context.Context) error {
	if !s.uploaded {
		return ErrNotUploaded
	}
	if s.report.CollectionID == "" {
		return ErrNoCollection
	}

	result := s.converter.Convert(ctx, s.oasContent, s.conversion)
	if !result.OK || result.Collection == nil {
		s.logger.Warn("could not convert OAS file, skipping collection update", "reason", result.Reason)
		s.report.Skipped = true
		s.report.SkipReason = result.Reason
		return nil
	}

	name := s.apiName
	collection := result.Collection.WithName(name)

	if _, err := s.remote.UpdateCollection(ctx, s.report.CollectionID, collection); err != nil {
		return fmt.Errorf("error updating collection %q: %w", s.report.CollectionID, err)
	}

	s.report.CollectionName = name
	s.logger.Info("collection updated",
		"collection_id", s.report.CollectionID,
		"name", name,
		"requests", len(collection.Requests()),
	)
	return nil
}

func (s *Syncer) upsertAPI(ctx context.Context) (string, error) {
	api, err := s.remote.FindAPIByName(ctx, s.apiName)
	if err != nil {
		return "", fmt.Errorf("error finding API %q: %w", s.apiName, err)
	}

	if api == nil {
		api, err = s.remote.CreateAPI(ctx, s.apiName)
		if err != nil {
			return "", fmt.Errorf("error creating API %q: %w", s.apiName, err)
		}
		s.report.APICreated = true
		s.logger.Info("API created", "api_id", api.ID, "name", s.apiName)
	}

	s.report.APIID = api.ID
	return api.ID, nil
}

func (s *Syncer) upsertAPIVersion(ctx context.Context, apiID string) (string, error) {
	version, err := s.remote.GetAPIVersionByName(ctx, apiID, s.versionName)
	if err != nil {
		return "", fmt.Errorf("error finding API version %q: %w", s.versionName, err)
	}

	if version == nil {
		version, err = s.remote.CreateAPIVersion(ctx, apiID, s.versionName)
		if err != nil {
			return "", fmt.Errorf("error creating API version %q: %w", s.versionName, err)
		}
		s.report.VersionCreated = true
		s.logger.Info("API version created", "version_id", version.ID, "name", s.versionName)
	}

	s.report.VersionID = version.ID
	return version.ID, nil
}

// upsertSchemaAndGenerateDocCollection returns the id of the collection to
// update, or "" when creating one yielded nothing.
func (s *Syncer) upsertSchemaAndGenerateDocCollection(ctx context.Context, apiID, versionID string) (string, error) {
	version, err := s.remote.GetAPIVersionByID(ctx, apiID, versionID)
	if err != nil {
		return "", fmt.Errorf("error getting API version %q: %w", versionID, err)
	}

	schemaID := version.LatestSchemaID()
	if schemaID == "" {
		s.logger.Info("schema does not exist, creating")
		schema, err := s.remote.CreateSchema(ctx, apiID, versionID, s.oasContent)
		if err != nil {
			return "", fmt.Errorf("error creating schema: %w", err)
		}
		s.report.SchemaID = schema.ID
		s.report.SchemaAction = SchemaCreated

		return s.createDocCollection(ctx, apiID, versionID, schema.ID)
	}

	if updated := version.LastUpdated(); !updated.IsZero() {
		s.logger.Info("schema exists, updating", "schema_id", schemaID, "version_updated_at", updated)
	} else {
		s.logger.Info("schema exists, updating", "schema_id", schemaID)
	}
	schema, err := s.remote.UpdateSchema(ctx, apiID, versionID, schemaID, s.oasContent)
	if err != nil {
		return "", fmt.Errorf("error updating schema %q: %w", schemaID, err)
	}
	if schema.ID != "" {
		schemaID = schema.ID
	}
	s.report.SchemaID = schemaID
	s.report.SchemaAction = SchemaUpdated

	collectionID, err := s.remote.GetDocumentationCollectionID(ctx, apiID, versionID)
	if err != nil {
		return "", fmt.Errorf("error getting documentation collection: %w", err)
	}
	if collectionID != "" {
		return collectionID, nil
	}

	s.logger.Warn("related collection does not exist, creating a new one")
	return s.createDocCollection(ctx, apiID, versionID, schemaID)
}

func (s *Syncer) createDocCollection(ctx context.Context, apiID, versionID, schemaID string) (string, error) {
	created, err := s.remote.CreateCollectionFromSchema(ctx, apiID, versionID, schemaID, s.apiName)
	if err != nil {
		return "", fmt.Errorf("error creating collection from schema %q: %w", schemaID, err)
	}
	if created == nil || created.Collection.ID == "" {
		s.logger.Warn("collection creation returned no collection", "schema_id", schemaID)
		return "", nil
	}

	s.report.CollectionCreated = true
	s.logger.Info("documentation collection created", "collection_id", created.Collection.ID)
	return created.Collection.ID, nil
}
