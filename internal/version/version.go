package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X rigup/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X rigup/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X rigup/internal/version.Date={{.Date}}
)
