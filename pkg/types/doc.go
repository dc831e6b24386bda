// Package types defines the core types and interfaces used throughout rigup.
// This includes the FS filesystem abstraction and the Prompter, Notifier,
// and Pather interfaces that commands are built against.
package types
