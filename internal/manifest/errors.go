package manifest

import "errors"

// Sentinel errors for the manifest package
var (
	// ErrInvalidFormat indicates a manifest file is not valid JSON
	ErrInvalidFormat = errors.New("manifest must be valid JSON")

	// ErrFileNotFound indicates the manifest file does not exist
	ErrFileNotFound = errors.New("manifest file not found")
)
