package version

// Version is the syncman release. Overridden at build time with
// -ldflags "-X github.com/hashicorp-forge/syncman/internal/version.Version=...".
var Version = "0.1.0"

// GitCommit is set at build time.
var GitCommit = ""

// Full returns the version with the commit, when known.
func Full() string {
	if GitCommit == "" {
		return "v" + Version
	}
	return "v" + Version + " (" + GitCommit + ")"
}
