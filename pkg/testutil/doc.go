// Package testutil provides filesystem helpers for rigup tests.
//
// Helpers create files, directories, and symlinks under t.TempDir() roots
// and assert on the results. All of them call t.Helper() and fail the test
// on error, so call sites stay free of error plumbing.
package testutil
