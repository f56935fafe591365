// Command pencil renders photographs as pencil sketches, either for files
// named on the command line or continuously for a hot folder.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"pencilsketch/core"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "Warning: failed to load .env: %v\n", err)
	}

	if len(args) == 0 {
		printUsage(stderr)
		return core.ExitCodeError
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "render":
		return runRender(rest, stdout, stderr)
	case "watch":
		return runWatch(rest, stdout, stderr)
	case "history":
		return runHistory(rest, stdout, stderr)
	case "presets":
		return runPresets(rest, stdout, stderr)
	case "service":
		return runService(rest, stdout, stderr)
	case "version", "-version", "--version":
		fmt.Fprintln(stdout, "pencil", core.GetVersionInfo())
		return core.ExitCodeSuccess
	case "help", "-h", "-help", "--help":
		printUsage(stdout)
		return core.ExitCodeSuccess
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		printUsage(stderr)
		return core.ExitCodeError
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pencil <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render [flags] files...   Render images as pencil sketches")
	fmt.Fprintln(w, "  watch [flags]             Render every image dropped into INBOX_DIR")
	fmt.Fprintln(w, "  history [-n 20]           Show recent renders from HISTORY_DB")
	fmt.Fprintln(w, "  presets                   List parameter presets")
	fmt.Fprintln(w, "  service <action>          install|uninstall|start|stop|status|run the watcher as a service")
	fmt.Fprintln(w, "  version                   Print version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration is read from the environment and an optional .env file.")
}
