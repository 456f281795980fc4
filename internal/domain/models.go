package domain

import "time"

// ProductName is the fixed product name recorded in every manifest
const ProductName = "hello world"

// ManifestFileName is the name of the manifest written into the source directory
const ManifestFileName = "version.json"

// Manifest describes the packaged source directory.
// Field order is the serialized key order.
type Manifest struct {
	Name    string   `json:"name" yaml:"name"`
	Version string   `json:"version" yaml:"version"`
	Files   []string `json:"files" yaml:"files"`
}

// NewManifest creates a manifest, normalizing a nil file list to an empty one
func NewManifest(name, version string, files []string) *Manifest {
	if files == nil {
		files = []string{}
	}
	return &Manifest{
		Name:    name,
		Version: version,
		Files:   files,
	}
}

// Request holds the three positional arguments of a build
type Request struct {
	RepoURL    string
	SourcePath string
	Version    string
}

// Result is the outcome of a build run
type Result struct {
	Success     bool
	Message     string
	ArchivePath string
	Manifest    *Manifest
	Duration    time.Duration
}

// Clock returns the current time
type Clock func() time.Time

// SystemClock is the wall clock in local time
func SystemClock() time.Time {
	return time.Now()
}
