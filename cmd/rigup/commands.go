package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	latest "github.com/tcnksm/go-latest"

	"rigup/internal/version"
	"rigup/pkg/config"
	"rigup/pkg/errors"
	"rigup/pkg/fetch"
	"rigup/pkg/filesystem"
	"rigup/pkg/gitrepo"
	"rigup/pkg/link"
	"rigup/pkg/paths"
	"rigup/pkg/rcfile"
	"rigup/pkg/recipes"
	"rigup/pkg/sudo"
	"rigup/pkg/types"
	"rigup/pkg/ui"
)

// app bundles the wired services every command needs.
type app struct {
	cfg    *config.Config
	paths  paths.Paths
	fs     types.FS
	notify types.Notifier
}

// newApp discovers the rig root, loads configuration, and re-derives
// paths with the configured overrides applied.
func newApp() (*app, error) {
	boot, err := paths.New("")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(boot.ConfigDir(), boot.RigRoot())
	if err != nil {
		return nil, err
	}

	p, err := paths.NewWithOverrides(boot.RigRoot(), cfg.LocalRoot, cfg.RCFile)
	if err != nil {
		return nil, err
	}

	notify := ui.NewConsoleNotifier()
	if p.UsedFallback() {
		notify.Info("no rig root configured, falling back to %s", p.RigRoot())
	}

	return &app{cfg: cfg, paths: p, fs: filesystem.NewOS(), notify: notify}, nil
}

// recipeEnv wires the services recipe steps run against.
func (a *app) recipeEnv(rerun bool) *recipes.Env {
	home, err := paths.GetHomeDirectory()
	if err != nil {
		home = ""
	}

	return &recipes.Env{
		FS:     a.fs,
		Paths:  a.paths,
		Notify: a.notify,
		RC:     rcfile.NewWriter(a.fs, a.notify),
		Links:  link.New(a.fs, ui.NewConsolePrompter(), a.notify),
		Git:    gitrepo.New(a.fs, nil, a.notify),
		Fetch:  fetch.New(a.cfg.Fetch.Timeout, a.notify),
		Home:   home,
		Rerun:  rerun,
	}
}

// pathSnippet is the rc block putting the local bin dir on PATH, with
// the home directory abstracted away so the block survives machine moves.
func (a *app) pathSnippet() rcfile.Block {
	home, err := paths.GetHomeDirectory()
	if err != nil {
		home = ""
	}
	body := fmt.Sprintf(`export PATH="%s:$PATH"`, a.paths.BinDir())
	return rcfile.Block{
		Label: "rigup path",
		Body:  rcfile.HomeRelative(body, a.paths.LocalRoot(), home),
	}
}

func newUpCmd() *cobra.Command {
	var rerun, dryRun bool

	cmd := &cobra.Command{
		Use:   "up [recipe...]",
		Short: MsgUpShort,
		Long:  MsgUpLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			manifest, err := recipes.LoadManifest(a.fs, a.paths.ManifestPath())
			if err != nil {
				return err
			}
			selected, err := manifest.Select(args)
			if err != nil {
				return err
			}

			if dryRun {
				for _, r := range selected {
					a.notify.Milestone("recipe %s (%d steps)", r.Name, len(r.Steps))
					for _, s := range r.Steps {
						a.notify.Info("would run %s step", s.Kind)
					}
				}
				return nil
			}

			keepAlive := sudo.New(a.cfg.Sudo.RefreshInterval, nil)
			runner := recipes.NewRunner(a.recipeEnv(rerun), keepAlive)
			summary := runner.Run(cmd.Context(), recipes.Build(selected))

			renderSummary(summary)
			if summary.Failed() {
				return errors.New(errors.ErrRecipeFailed, "one or more recipes failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&rerun, "rerun", false, MsgFlagRerun)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	return cmd
}

// renderSummary prints the end-of-run table.
func renderSummary(summary *recipes.Summary) {
	data := pterm.TableData{{"RECIPE", "STATUS"}}
	for _, r := range summary.Results {
		status := string(r.Status)
		switch r.Status {
		case recipes.StatusOK:
			status = pterm.Green(status)
		case recipes.StatusFailed:
			status = pterm.Red(status)
		case recipes.StatusSkipped:
			status = pterm.Gray(status)
		}
		data = append(data, []string{r.Name, status})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func newRecipesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: MsgRecipesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			manifest, err := recipes.LoadManifest(a.fs, a.paths.ManifestPath())
			if err != nil {
				return err
			}

			data := pterm.TableData{{"RECIPE", "STEPS", "SUDO", "DESCRIPTION"}}
			for _, r := range manifest.Recipes {
				needsSudo := ""
				if r.NeedsSudo {
					needsSudo = "yes"
				}
				data = append(data, []string{r.Name, fmt.Sprintf("%d", len(r.Steps)), needsSudo, r.Description})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

func newLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link SOURCE DEST",
		Short: MsgLinkShort,
		Long:  MsgLinkLong,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			installer := link.New(a.fs, ui.NewConsolePrompter(), a.notify)
			outcome, err := installer.Symlink(args[0], args[1])
			if err != nil {
				return err
			}
			switch outcome {
			case link.Declined:
				return errors.Newf(errors.ErrSymlinkCreate, "replacement of %s declined", args[1])
			case link.SourceMissing:
				return errors.Newf(errors.ErrFileNotFound, "link source %s missing", args[0])
			}
			return nil
		},
	}
}

func newRequireCmd() *cobra.Command {
	var file, label string
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "require [text...]",
		Short: MsgRequireShort,
		Long:  MsgRequireLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			var body string
			if fromStdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, errors.ErrInvalidInput, "cannot read stdin")
				}
				body = strings.TrimRight(string(data), "\n")
			} else {
				body = strings.Join(args, " ")
			}
			if body == "" {
				return errors.New(errors.ErrInvalidInput, "no block body given")
			}

			target := file
			if target == "" {
				target = a.paths.RCFile()
			}

			home, err := paths.GetHomeDirectory()
			if err != nil {
				home = ""
			}
			body = rcfile.HomeRelative(body, a.paths.LocalRoot(), home)

			writer := rcfile.NewWriter(a.fs, a.notify)
			_, err = writer.RequireBlock(target, rcfile.Block{Label: label, Body: body})
			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", MsgFlagFile)
	cmd.Flags().StringVar(&label, "label", "", MsgFlagLabel)
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, MsgFlagStdin)
	_ = cmd.MarkFlagRequired("label")
	return cmd
}

func newSnippetCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "snippet",
		Short: MsgSnippetShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			block := a.pathSnippet()
			if !apply {
				fmt.Fprintln(cmd.OutOrStdout(), block.Render())
				return nil
			}

			writer := rcfile.NewWriter(a.fs, a.notify)
			_, err = writer.RequireBlock(a.paths.RCFile(), block)
			return err
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, MsgFlagApply)
	return cmd
}

// seedManifest is what `rigup init` writes for a fresh rig.
func seedManifest() *recipes.Manifest {
	return &recipes.Manifest{
		Recipes: []recipes.RecipeSpec{
			{
				Name:        "hello",
				Description: "replace this with your own provisioning",
				Steps: []recipes.StepSpec{
					{Kind: recipes.StepShell, Script: "echo rig is up"},
				},
			},
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: MsgInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			manifestPath := a.paths.ManifestPath()
			if _, err := a.fs.Stat(manifestPath); err == nil {
				return errors.Newf(errors.ErrAlreadyExists, "%s already exists", manifestPath)
			}

			data, err := toml.Marshal(seedManifest())
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "cannot render starter manifest")
			}
			if err := a.fs.WriteFile(manifestPath, data, 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", manifestPath)
			}
			a.notify.Info("wrote %s", manifestPath)

			for _, dir := range []string{a.paths.BinDir(), a.paths.SrcDir()} {
				if err := a.fs.MkdirAll(dir, 0755); err != nil {
					return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
				}
				a.notify.Info("created %s", dir)
			}

			a.notify.Milestone("rig initialized at %s", a.paths.RigRoot())
			return nil
		},
	}
}

func newDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "docs [topic]",
		Short:     MsgDocsShort,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: topicNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Topics:")
				for _, name := range topicNames() {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
				}
				return nil
			}
			return renderTopic(cmd.OutOrStdout(), args[0])
		},
	}
}

func newVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rigup version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)

			if !check {
				return nil
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			githubTag := &latest.GithubTag{
				Owner:      a.cfg.Update.Owner,
				Repository: a.cfg.Update.Repository,
			}
			res, err := latest.Check(githubTag, version.Version)
			if err != nil {
				return errors.Wrap(err, errors.ErrDownload, "update check failed")
			}
			if res.Outdated {
				fmt.Fprintf(out, "\nA newer release is available: %s\n", res.Current)
				fmt.Fprintf(out, "https://github.com/%s/%s/releases\n", githubTag.Owner, githubTag.Repository)
			} else {
				fmt.Fprintln(out, "\nYou are on the latest release.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, MsgFlagCheck)
	return cmd
}
