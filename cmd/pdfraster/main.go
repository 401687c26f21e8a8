package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"

	pdfraster "github.com/alnah/go-pdfraster"
	"github.com/alnah/go-pdfraster/internal/config"
	"github.com/alnah/go-pdfraster/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	if hasVerboseFlag(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the command and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, rest := args[1], args[2:]
	switch {
	case cmd == "convert":
		return reportError(runConvert(ctx, rest, env), env)
	case looksLikePDF(cmd):
		return reportError(runConvert(ctx, args[1:], env), env)
	case cmd == "doctor":
		return runDoctorCmd(ctx, rest, env)
	case isCommand(cmd, "version"):
		fmt.Fprintf(env.Stdout, "pdfraster %s (pdf.js %s)\n", Version, pdfraster.PDFJSVersion)
		return ExitSuccess
	case isCommand(cmd, "help"):
		runHelp(rest, env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// reportError prints err with any matching hint and maps it to an exit code.
func reportError(err error, env *Environment) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, errorHint(err))
	return exitCodeFor(err)
}

// errorHint picks an actionable hint for err, or "".
func errorHint(err error) string {
	switch {
	case errors.Is(err, pdfraster.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(triedPaths(err))
	case errors.Is(err, ErrInvalidLocatorFlag), errors.Is(err, pdfraster.ErrInvalidLocator):
		return hints.ForLocators()
	case errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}

// triedPaths extracts the search list from a config-not-found error.
func triedPaths(err error) []string {
	_, list, ok := strings.Cut(err.Error(), "tried ")
	if !ok {
		return nil
	}
	return strings.Split(list, ", ")
}

// isCommand matches a command name or its flag spellings.
func isCommand(arg, name string) bool {
	return arg == name || arg == "--"+name || (len(name) > 0 && arg == "-"+name[:1])
}

// looksLikePDF lets "pdfraster file.pdf" skip the convert keyword.
func looksLikePDF(arg string) bool {
	return !strings.HasPrefix(arg, "-") && isPDF(arg)
}

// hasVerboseFlag scans raw args before flag parsing.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}
