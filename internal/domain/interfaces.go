package domain

import "context"

//go:generate mockgen -destination=../mocks/mock_source.go -package=mocks github.com/quantmind-br/repozip/internal/domain RepositorySource

// RepositorySource fetches a remote repository into a local directory
type RepositorySource interface {
	// Name returns the source backend name
	Name() string
	// Fetch clones url into an empty destination directory
	Fetch(ctx context.Context, url, destination string) error
}

// ProgressReporter receives progress while a long operation runs
type ProgressReporter interface {
	// Add advances progress by n units
	Add(n int) error
	// Finish marks the operation as complete
	Finish() error
}
