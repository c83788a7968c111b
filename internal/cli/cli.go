package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/formcalc/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError wraps a message into the exit code used for bad invocations.
func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("formcalc", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
formcalc - live calculated fields for form definitions.

Loads a form, wires its calculated fields, replays --set interactions in
order and prints every calculated field as name=value.

Usage:
  formcalc [options] FORM_PATH...

Arguments:
  FORM_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
  Every option except --set, --form and -f also reads FORMCALC_<OPTION>
  from the environment, e.g. FORMCALC_LOG_LEVEL=debug.

`)
		flagSet.PrintDefaults()
	}

	var interactions []app.Interaction
	flagSet.Func("set", "Interaction `name=value` applied in order. Repeatable.", func(s string) error {
		in, err := app.ParseInteraction(s)
		if err != nil {
			return err
		}
		interactions = append(interactions, in)
		return nil
	})
	formFlag := flagSet.String("form", "", "Path to the form file or directory.")
	fFlag := flagSet.String("f", "", "Path to the form file or directory (shorthand).")
	relayURLFlag := flagSet.String("relay-url", envDefault("relay-url", ""), "socket.io endpoint that receives calculated field updates.")
	relayNamespaceFlag := flagSet.String("relay-namespace", envDefault("relay-namespace", ""), "socket.io namespace for updates. Defaults to '/'.")
	relayEventFlag := flagSet.String("relay-event", envDefault("relay-event", ""), "socket.io event name for updates. Defaults to 'formcalc:update'.")
	relayInsecureFlag := flagSet.Bool("relay-insecure", envBool("relay-insecure"), "Skip TLS certificate verification for the relay.")
	logFormatFlag := flagSet.String("log-format", envDefault("log-format", "text"), "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", envDefault("log-level", "warn"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}
	slog.Debug("Arguments parsed successfully.")

	var paths []string
	if *formFlag != "" {
		paths = append(paths, *formFlag)
	}
	if *fFlag != "" {
		paths = append(paths, *fFlag)
	}
	paths = append(paths, flagSet.Args()...)
	slog.Debug("Form paths determined.", "paths", paths)

	if len(paths) == 0 {
		slog.Debug("No form path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		FormPaths:      paths,
		Interactions:   interactions,
		RelayURL:       *relayURLFlag,
		RelayNamespace: *relayNamespaceFlag,
		RelayEvent:     *relayEventFlag,
		RelayInsecure:  *relayInsecureFlag,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
	})
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "paths", len(config.FormPaths), "interactions", len(config.Interactions))
	return config, false, nil
}
