package main

// Short messages (one-liners)
const (
	MsgRootShort = "Provision a machine from your rig"
	MsgRootLong = `rigup provisions a machine from a rig: a git checkout holding a
rigup.toml manifest of recipes. Recipes clone repositories, download and
extract archives, symlink binaries into a local bin directory, append
idempotent blocks to your shell rc file, and run shell snippets, in
manifest order.`

	MsgUpShort = "Run recipes from the manifest"
	MsgUpLong = `Up runs all recipes from rigup.toml in manifest order, or only the
named ones. A failing recipe stops the run; the remaining recipes are
reported as skipped. Steps marked once are skipped when their sentinel
says they already completed, unless --rerun is given.`

	MsgRecipesShort = "List the recipes in the manifest"
	MsgLinkShort    = "Symlink a file, backing up whatever is in the way"
	MsgLinkLong = `Link creates a symlink at DEST pointing to SOURCE. When DEST already
points at SOURCE nothing happens. Anything else at DEST is moved to a
numbered .bk backup first, after an interactive confirmation.`

	MsgRequireShort = "Append a labeled block to an rc file, once"
	MsgRequireLong = `Require appends a "# LABEL" header plus the given text to an rc file,
skipping the append when the exact block is already present. The target
file must exist. Text is read from the arguments, or from stdin with
--stdin.`

	MsgSnippetShort = "Print the shell snippet that puts rigup's bin on PATH"
	MsgInitShort    = "Write a starter rigup.toml and create the local root"
	MsgDocsShort    = "Show a documentation topic"
	MsgVersionShort = "Print version information"

	MsgCompletionShort = "Generate shell completion script"
)

// Flag descriptions
const (
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagRerun   = "Run once-steps again, ignoring their sentinels"
	MsgFlagDryRun  = "List what would run without executing anything"
	MsgFlagApply   = "Append the snippet to the rc file instead of printing it"
	MsgFlagStdin   = "Read the block body from stdin"
	MsgFlagFile    = "Target rc file (default: the detected shell rc file)"
	MsgFlagLabel   = "Block label, written as a # comment header"
	MsgFlagCheck   = "Check GitHub for a newer release"
)
