package pipeline

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/TheRakeshPurohit/litex/internal/features"
)

// defaultCFlags mirror the flags the BIOS has always been built with:
// size-optimized, every function and datum in its own section so the linker
// can drop uninstantiated units.
var defaultCFlags = []string{
	"-Os",
	"-march=rv32ima",
	"-mabi=ilp32",
	"-ffunction-sections",
	"-fdata-sections",
	"-fomit-frame-pointer",
	"-fno-builtin",
	"-nostdinc",
	"-Wall",
}

// GNU drives a GNU cross toolchain (<prefix>gcc) through os/exec.
type GNU struct {
	// Prefix is the cross-compilation triple prefix, e.g.
	// "riscv64-unknown-elf-".
	Prefix string
	// CFlags replace the default compile flags when non-nil.
	CFlags []string
}

// NewGNU returns a toolchain for the given triple prefix.
func NewGNU(prefix string) *GNU {
	return &GNU{Prefix: prefix}
}

func (g *GNU) cflags() []string {
	if g.CFlags != nil {
		return g.CFlags
	}
	return defaultCFlags
}

// ID implements Toolchain.
func (g *GNU) ID() string {
	return g.Prefix + "gcc " + strings.Join(g.cflags(), " ")
}

// Compile implements Toolchain.
func (g *GNU) Compile(ctx context.Context, job CompileJob) error {
	args := append([]string{}, g.cflags()...)
	args = append(args, defineArgs(job.Defines)...)
	args = append(args, "-MMD", "-MF", job.DepFile, "-c", job.Source, "-o", job.Object)
	return g.run(ctx, args)
}

// Assemble implements Toolchain. Assembly sources still go through the
// compiler driver so they see the same preprocessor constants.
func (g *GNU) Assemble(ctx context.Context, job CompileJob) error {
	args := append([]string{}, g.cflags()...)
	args = append(args, defineArgs(job.Defines)...)
	args = append(args, "-D__ASSEMBLY__", "-MMD", "-MF", job.DepFile, "-c", job.Source, "-o", job.Object)
	return g.run(ctx, args)
}

// Link implements Toolchain.
func (g *GNU) Link(ctx context.Context, job LinkJob) error {
	args := []string{
		"-nostartfiles",
		"-nostdlib",
		"-T", job.Script,
		"-Wl,-Map=" + job.MapFile,
		"-Wl,--gc-sections",
	}
	args = append(args, job.Objects...)
	if len(job.Archives) > 0 {
		args = append(args, "-Wl,--whole-archive")
		args = append(args, job.Archives...)
		args = append(args, "-Wl,--no-whole-archive")
	}
	args = append(args, "-o", job.Output)
	return g.run(ctx, args)
}

func (g *GNU) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, g.Prefix+"gcc", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		// The toolchain's own diagnostics are the error message.
		return fmt.Errorf("%s %s: %w\n%s", g.Prefix+"gcc", strings.Join(args, " "), err, out)
	}
	return nil
}

func defineArgs(defines []features.Define) []string {
	args := make([]string, 0, len(defines))
	for _, d := range defines {
		if d.Value == "" {
			args = append(args, "-D"+d.Name)
		} else {
			args = append(args, "-D"+d.Name+"="+d.Value)
		}
	}
	return args
}
