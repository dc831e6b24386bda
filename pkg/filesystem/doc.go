// Package filesystem provides filesystem implementations for rigup.
//
// This package contains implementations of the types.FS interface,
// currently the standard OS filesystem used by all commands.
package filesystem
