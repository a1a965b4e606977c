package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/TheRakeshPurohit/litex/internal/app"
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

// Parse processes command-line arguments, falling back to the BIOS build
// environment variables where a flag is left unset. It returns a populated
// app.Config, a boolean indicating if the program should exit cleanly, or
// an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("bios", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
bios - BIOS image builder for LiteX-style RISC-V SoCs.

Usage:
  bios [options] [MANIFEST_PATH]

Arguments:
  MANIFEST_PATH
    Path to a build manifest (.hcl file) or a directory of manifest fragments.

Options:
`)
		flagSet.PrintDefaults()
	}

	manifestFlag := flagSet.String("manifest", "", "Path to the build manifest file or directory.")
	mFlag := flagSet.String("m", "", "Path to the build manifest file or directory (shorthand).")
	buildDirFlag := flagSet.String("build-dir", "build", "Directory for intermediate objects and artifacts.")
	toolchainFlag := flagSet.String("toolchain", "riscv64-unknown-elf-", "Cross toolchain triple prefix.")
	cpuFlag := flagSet.String("cpu", "", "Target CPU identifier; unknown values use the default memory layout.")
	outputFlag := flagSet.String("output", "", "Base name for build artifacts. Overrides the manifest.")
	consoleDisableFlag := flagSet.Bool("console-disable", false, "Build without any console support.")
	consoleLiteFlag := flagSet.Bool("console-lite", false, "Use the simplified console line editor.")
	noAutocompleteFlag := flagSet.Bool("no-autocomplete", false, "Disable console autocompletion.")
	noHistoryFlag := flagSet.Bool("no-history", false, "Disable console history.")
	tftpPortFlag := flagSet.String("tftp-port", "", "Override the compiled-in TFTP server port.")
	jobsFlag := flagSet.Int("jobs", 0, "Number of concurrent compile jobs. 0 uses all CPUs.")
	simulateFlag := flagSet.Bool("simulate", false, "After building, run the boot flow over the image.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *manifestFlag != "" {
		path = *manifestFlag
	} else if *mFlag != "" {
		path = *mFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	// Environment fallbacks, matching the variables the original build
	// always honored. A flag that was set explicitly wins.
	cpu := *cpuFlag
	if cpu == "" {
		cpu = env.Str("CPU", "")
	}
	tftpPort := *tftpPortFlag
	if tftpPort == "" {
		// Carried verbatim; a malformed value becomes a compiler
		// diagnostic, not a CLI error.
		tftpPort = env.Str("TFTP_SERVER_PORT", "")
	}

	config, err := app.NewConfig(app.Config{
		ManifestPath:    path,
		BuildDir:        *buildDirFlag,
		ToolchainPrefix: *toolchainFlag,
		CPU:             cpu,
		Output:          *outputFlag,
		ConsoleDisable:  *consoleDisableFlag || env.Bool("BIOS_CONSOLE_DISABLE"),
		ConsoleLite:     *consoleLiteFlag || env.Bool("BIOS_CONSOLE_LITE"),
		NoAutocomplete:  *noAutocompleteFlag || env.Bool("BIOS_CONSOLE_NO_AUTOCOMPLETE"),
		NoHistory:       *noHistoryFlag || env.Bool("BIOS_CONSOLE_NO_HISTORY"),
		TFTPPort:        tftpPort,
		Jobs:            *jobsFlag,
		Simulate:        *simulateFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
