package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/glamour"

	"rigup/docs"
	"rigup/pkg/errors"
	"rigup/pkg/ui"
)

// topicNames lists the embedded documentation topics, sorted.
func topicNames() []string {
	names := docs.Topics()
	sort.Strings(names)
	return names
}

// renderTopic writes one topic to out, through glamour on a terminal
// and as raw markdown everywhere else.
func renderTopic(out io.Writer, name string) error {
	source, ok := docs.Topic(name)
	if !ok {
		return errors.Newf(errors.ErrNotFound, "no topic named %q (try `rigup docs`)", name)
	}

	if ui.DetectFormat(os.Stdout) != ui.FormatTerminal {
		fmt.Fprintln(out, source)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Fprintln(out, source)
		return nil
	}

	rendered, err := renderer.Render(source)
	if err != nil {
		fmt.Fprintln(out, source)
		return nil
	}

	fmt.Fprint(out, rendered)
	return nil
}
