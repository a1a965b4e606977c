package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TheRakeshPurohit/litex/internal/ctxlog"
	"github.com/TheRakeshPurohit/litex/internal/features"
	"github.com/TheRakeshPurohit/litex/internal/image"
	"github.com/TheRakeshPurohit/litex/internal/layout"
	"github.com/TheRakeshPurohit/litex/internal/pipeline"
)

// Run executes one build: resolve the feature set, select the layout,
// compile and link, then post-process the executable into the flashable
// checksum-framed image.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	objset, defines := features.Resolve(a.model)
	a.logger.Info("Feature set resolved.", "units", len(objset), "defines", len(defines))

	desc := layout.Select(a.model.CPU)
	a.logger.Info("Memory layout selected.", "cpu", a.model.CPU, "layout", desc.Name)

	p := &pipeline.Pipeline{
		BuildDir:  a.cfg.BuildDir,
		Toolchain: a.toolchain,
		Jobs:      a.cfg.Jobs,
	}
	result, err := p.Run(ctx, pipeline.Build{
		Output:   a.model.Output,
		CRT0:     a.model.CRT0,
		Units:    objset,
		Defines:  defines,
		Layout:   desc,
		Archives: a.model.Archives,
	})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	a.logger.Info("Image linked.", "executable", result.Executable, "map", result.MapFile, "relinked", result.Relinked)

	elfBytes, err := os.ReadFile(result.Executable)
	if err != nil {
		return fmt.Errorf("failed to read linked executable: %w", err)
	}

	raw, err := image.Objcopy(elfBytes)
	if err != nil {
		return fmt.Errorf("post-processing failed: %w", err)
	}
	binPath := filepath.Join(a.cfg.BuildDir, a.model.Output+".bin")
	if err := os.WriteFile(binPath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write raw image: %w", err)
	}

	framed := image.Frame(raw, a.model.ByteOrder())
	fbiPath := filepath.Join(a.cfg.BuildDir, a.model.Output+".fbi")
	if err := os.WriteFile(fbiPath, framed, 0o644); err != nil {
		return fmt.Errorf("failed to write framed image: %w", err)
	}
	a.logger.Info("Flashable image written.", "bin", binPath, "fbi", fbiPath, "size", len(raw))

	if a.cfg.Simulate {
		if err := a.simulate(ctx, elfBytes, framed, desc); err != nil {
			return fmt.Errorf("boot simulation failed: %w", err)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
