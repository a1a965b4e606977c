package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/TheRakeshPurohit/litex/internal/app"
	"github.com/TheRakeshPurohit/litex/internal/cli"
	"github.com/TheRakeshPurohit/litex/internal/hcl"
)

// main is the entrypoint for the bios image builder.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical startup errors (unreadable or invalid
	// manifests), so we recover here and surface a clean error instead.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	// Instantiate the concrete HCL loader to pass to the app. A nil
	// toolchain selects the GNU cross toolchain from the config.
	loader := hcl.NewLoader()
	biosApp := app.New(outW, appConfig, loader, nil)

	return biosApp.Run(context.Background())
}
