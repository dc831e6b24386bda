// rigup-clip unwraps hard-wrapped text: from stdin to stdout when piped,
// otherwise in place on the clipboard. With --watch it keeps polling the
// clipboard and reformats every new copy until interrupted.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/pflag"

	"rigup/internal/version"
)

func main() {
	watchFlag := pflag.BoolP("watch", "w", false, "Keep watching the clipboard and reformat every new copy")
	intervalFlag := pflag.DurationP("interval", "i", 500*time.Millisecond, "Clipboard poll interval in watch mode")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rigup-clip [options]\n\n")
		fmt.Fprintf(os.Stderr, "rigup-clip unwraps hard-wrapped paragraphs, the kind PDF viewers and\n")
		fmt.Fprintf(os.Stderr, "terminals produce on copy. Piped input is reformatted stdin to stdout;\n")
		fmt.Fprintf(os.Stderr, "otherwise the clipboard is rewritten in place.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("rigup-clip version %s\n", version.Version)
		return
	}

	if *watchFlag {
		if err := watch(*intervalFlag); err != nil {
			fmt.Fprintf(os.Stderr, "rigup-clip: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "rigup-clip: %v\n", err)
		os.Exit(1)
	}
}

// runOnce reformats stdin when piped, the clipboard otherwise.
func runOnce() error {
	stat, _ := os.Stdin.Stat()
	piped := (stat.Mode() & os.ModeCharDevice) == 0

	if piped {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		fmt.Print(Unwrap(string(data)))
		return nil
	}

	content, err := clipboard.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read clipboard: %w", err)
	}
	if content == "" {
		fmt.Fprintln(os.Stderr, "clipboard is empty, nothing to do")
		return nil
	}

	if err := clipboard.WriteAll(Unwrap(content)); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	fmt.Fprintln(os.Stderr, "clipboard reformatted")
	return nil
}

// watch polls the clipboard and reformats every new copy. The loop ends
// on SIGINT or SIGTERM; it is never left running detached.
func watch(interval time.Duration) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fmt.Fprintln(os.Stderr, "watching the clipboard, ^C to stop")

	// Remember what we last wrote so our own output is not re-processed.
	var lastSeen string

	for {
		select {
		case <-stop:
			return nil
		case <-ticker.C:
			content, err := clipboard.ReadAll()
			if err != nil || content == "" || content == lastSeen {
				continue
			}

			unwrapped := Unwrap(content)
			if unwrapped == content {
				lastSeen = content
				continue
			}

			if err := clipboard.WriteAll(unwrapped); err != nil {
				return fmt.Errorf("failed to write clipboard: %w", err)
			}
			lastSeen = unwrapped
			fmt.Fprintln(os.Stderr, "clipboard reformatted")
		}
	}
}
