// Package recipes loads the rigup.toml manifest and runs its recipes in
// order. A recipe is a named sequence of steps: shell snippets, git
// clones, downloads, symlinks and rc-file blocks. Execution is strictly
// sequential and stops at the first failure.
package recipes

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"rigup/pkg/errors"
	"rigup/pkg/shellexec"
	"rigup/pkg/types"
)

// Step kinds accepted in the manifest.
const (
	StepShell   = "shell"
	StepClone   = "clone"
	StepFetch   = "fetch"
	StepLink    = "link"
	StepRequire = "require"
)

// Manifest is the parsed rigup.toml.
type Manifest struct {
	Recipes []RecipeSpec `toml:"recipe"`
}

// RecipeSpec is one [[recipe]] table.
type RecipeSpec struct {
	Name        string     `toml:"name"`
	Description string     `toml:"description,omitempty"`
	NeedsSudo   bool       `toml:"needs_sudo,omitempty"`
	Steps       []StepSpec `toml:"step"`
}

// StepSpec is one [[recipe.step]] table. Which fields matter depends on
// Kind; Validate enforces the per-kind requirements.
type StepSpec struct {
	Kind string `toml:"kind"`

	// shell
	Script string   `toml:"script,omitempty"`
	Dir    string   `toml:"dir,omitempty"`
	Env    []string `toml:"env,omitempty"`
	Once   string   `toml:"once,omitempty"`

	// clone and fetch
	URL  string `toml:"url,omitempty"`
	Dest string `toml:"dest,omitempty"`

	// fetch
	Extract string `toml:"extract,omitempty"`

	// link
	Source string `toml:"source,omitempty"`
	Target string `toml:"target,omitempty"`

	// require
	Label string `toml:"label,omitempty"`
	Body  string `toml:"body,omitempty"`
	File  string `toml:"file,omitempty"`

	// snippet holds the pre-parsed shell script
	snippet *shellexec.Snippet
}

// LoadManifest reads and validates the manifest at path.
func LoadManifest(fs types.FS, path string) (*Manifest, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestNotFound, "cannot read manifest %s", path)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "cannot parse manifest %s", path)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks structural requirements and parses every shell
// snippet, so syntax errors surface before anything runs.
func (m *Manifest) Validate() error {
	if len(m.Recipes) == 0 {
		return errors.New(errors.ErrManifestInvalid, "manifest declares no recipes")
	}

	seen := make(map[string]bool, len(m.Recipes))
	for ri := range m.Recipes {
		r := &m.Recipes[ri]
		if r.Name == "" {
			return errors.Newf(errors.ErrManifestInvalid, "recipe %d has no name", ri+1)
		}
		if seen[r.Name] {
			return errors.Newf(errors.ErrManifestInvalid, "duplicate recipe name %q", r.Name)
		}
		seen[r.Name] = true

		if len(r.Steps) == 0 {
			return errors.Newf(errors.ErrManifestInvalid, "recipe %q has no steps", r.Name)
		}

		for si := range r.Steps {
			if err := r.Steps[si].validate(r.Name, si); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *StepSpec) validate(recipe string, index int) error {
	where := fmt.Sprintf("recipe %q step %d", recipe, index+1)

	switch s.Kind {
	case StepShell:
		if s.Script == "" {
			return errors.Newf(errors.ErrManifestInvalid, "%s: shell step has no script", where)
		}
		snippet, err := shellexec.Parse(fmt.Sprintf("%s/%d", recipe, index+1), s.Script)
		if err != nil {
			return errors.Wrapf(err, errors.ErrManifestInvalid, "%s: script does not parse", where)
		}
		s.snippet = snippet
	case StepClone:
		if s.URL == "" {
			return errors.Newf(errors.ErrManifestInvalid, "%s: clone step needs a url", where)
		}
	case StepFetch:
		if s.URL == "" {
			return errors.Newf(errors.ErrManifestInvalid, "%s: fetch step needs a url", where)
		}
	case StepLink:
		if s.Source == "" {
			return errors.Newf(errors.ErrManifestInvalid, "%s: link step needs a source", where)
		}
	case StepRequire:
		if s.Label == "" || s.Body == "" {
			return errors.Newf(errors.ErrManifestInvalid, "%s: require step needs a label and a body", where)
		}
	case "":
		return errors.Newf(errors.ErrManifestInvalid, "%s: step has no kind", where)
	default:
		return errors.Newf(errors.ErrManifestInvalid, "%s: unknown step kind %q", where, s.Kind)
	}

	return nil
}

// Select returns the named recipes in manifest order. Empty names means
// every recipe. An unknown name is an error.
func (m *Manifest) Select(names []string) ([]RecipeSpec, error) {
	if len(names) == 0 {
		return m.Recipes, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var selected []RecipeSpec
	for _, r := range m.Recipes {
		if wanted[r.Name] {
			selected = append(selected, r)
			delete(wanted, r.Name)
		}
	}

	for n := range wanted {
		return nil, errors.Newf(errors.ErrRecipeNotFound, "no recipe named %q in the manifest", n)
	}

	return selected, nil
}
