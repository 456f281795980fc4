// Package workspace manages the temporary directory a repository is cloned into.
//
// A run moves the workspace through reset, fetch, locate, prune and teardown.
// Only one run may use a given workspace root at a time.
package workspace
