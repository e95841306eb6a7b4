package oasconv

import "fmt"

// FolderStrategy decides how requests are grouped into folders.
type FolderStrategy string

const (
	// FolderStrategyTags creates one folder per operation tag.
	FolderStrategyTags FolderStrategy = "Tags"
	// FolderStrategyPaths creates one folder per first path segment.
	FolderStrategyPaths FolderStrategy = "Paths"
)

// ParameterResolution decides how parameter values are filled in.
type ParameterResolution string

const (
	// ResolutionExample prefers declared examples, then generated values.
	ResolutionExample ParameterResolution = "Example"
	// ResolutionSchema fills in type placeholders such as "<string>".
	ResolutionSchema ParameterResolution = "Schema"
)

// Options controls the conversion.
type Options struct {
	FolderStrategy              FolderStrategy
	SchemaFaker                 bool
	RequestParametersResolution ParameterResolution
}

// DefaultOptions groups by tag, generates examples and resolves parameters
// from examples.
func DefaultOptions() Options {
	return Options{
		FolderStrategy:              FolderStrategyTags,
		SchemaFaker:                 true,
		RequestParametersResolution: ResolutionExample,
	}
}

// Validate checks the option values.
func (o Options) Validate() error {
	switch o.FolderStrategy {
	case FolderStrategyTags, FolderStrategyPaths:
	default:
		return fmt.Errorf("unknown folder strategy %q (must be %q or %q)",
			o.FolderStrategy, FolderStrategyTags, FolderStrategyPaths)
	}

	switch o.RequestParametersResolution {
	case ResolutionExample, ResolutionSchema:
	default:
		return fmt.Errorf("unknown request parameters resolution %q (must be %q or %q)",
			o.RequestParametersResolution, ResolutionExample, ResolutionSchema)
	}

	return nil
}
