package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/TheRakeshPurohit/litex/internal/config"
	"github.com/TheRakeshPurohit/litex/internal/ctxlog"
	"github.com/TheRakeshPurohit/litex/internal/dag"
	"github.com/TheRakeshPurohit/litex/internal/features"
	"github.com/TheRakeshPurohit/litex/internal/layout"
)

const linkStep = "link"

// Build is everything one link pipeline invocation consumes.
type Build struct {
	// Output is the artifact base name.
	Output string
	// CRT0 is the boot-entry assembly source. Its object is always linked
	// first.
	CRT0 string
	// Units is the resolved object set.
	Units features.ObjectSet
	// Defines is the resolved preprocessor constant list.
	Defines []features.Define
	// Layout is the selected memory layout.
	Layout layout.Descriptor
	// Archives are the driver libraries, in link order.
	Archives []*config.Archive
}

// Result reports the produced artifacts.
type Result struct {
	Executable string
	MapFile    string
	Script     string
	// Relinked is false when every step was satisfied from the cache.
	Relinked bool
}

// Pipeline compiles and links one BIOS image into BuildDir.
type Pipeline struct {
	BuildDir  string
	Toolchain Toolchain
	// Jobs caps the compile fan-out. Zero or negative means NumCPU.
	Jobs int
}

// Run executes the pipeline: render the linker script, compile every unit
// that changed, and relink when any input of the link changed.
func (p *Pipeline) Run(ctx context.Context, build Build) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	objDir := filepath.Join(p.BuildDir, "obj")
	if err := os.MkdirAll(objDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create build directory: %w", err)
	}

	script := filepath.Join(p.BuildDir, "linker.ld")
	var scriptBuf bytes.Buffer
	if err := build.Layout.RenderScript(&scriptBuf); err != nil {
		return nil, fmt.Errorf("failed to render linker script: %w", err)
	}
	if err := os.WriteFile(script, scriptBuf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write linker script: %w", err)
	}
	logger.Debug("Linker script rendered.", "layout", build.Layout.Name, "path", script)

	units := make(features.ObjectSet, 0, len(build.Units)+1)
	units = append(units, features.Unit{Name: "crt0", Source: build.CRT0})
	units = append(units, build.Units...)

	graph, err := buildGraph(units)
	if err != nil {
		return nil, fmt.Errorf("failed to build step graph: %w", err)
	}

	// Compile fan-out. Each worker records the fingerprint of the object
	// it produced (or reused); changed steps feed the relink decision.
	g, gctx := errgroup.WithContext(ctx)
	jobs := p.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	g.SetLimit(jobs)

	var mu sync.Mutex
	var changed []string
	objectFPs := make(map[string]string, len(units))

	for _, unit := range units {
		unit := unit
		g.Go(func() error {
			fp, rebuilt, err := p.compileUnit(gctx, unit, build.Defines)
			if err != nil {
				return err
			}
			mu.Lock()
			objectFPs[unit.Name] = fp
			if rebuilt {
				changed = append(changed, stepID(unit.Name))
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Executable: filepath.Join(p.BuildDir, build.Output+".elf"),
		MapFile:    filepath.Join(p.BuildDir, build.Output+".map"),
		Script:     script,
	}

	relink, err := p.needsLink(graph, changed, units, objectFPs, scriptBuf.Bytes(), build, result.Executable)
	if err != nil {
		return nil, err
	}
	if !relink {
		logger.Debug("Link inputs unchanged, image is up to date.", "executable", result.Executable)
		return result, nil
	}

	job := LinkJob{
		Output:  result.Executable,
		Script:  script,
		MapFile: result.MapFile,
	}
	for _, unit := range units {
		job.Objects = append(job.Objects, p.objectPath(unit.Name))
	}
	for _, a := range build.Archives {
		job.Archives = append(job.Archives, a.Path)
	}

	logger.Debug("Linking image.", "objects", len(job.Objects), "archives", len(job.Archives))
	if err := p.Toolchain.Link(ctx, job); err != nil {
		return nil, fmt.Errorf("link failed: %w", err)
	}

	// Images are loaded by a flashing tool, never executed on the build
	// host. Windows has no executable bit to strip.
	if runtime.GOOS != "windows" {
		if err := os.Chmod(result.Executable, 0o644); err != nil {
			return nil, fmt.Errorf("failed to strip executable bit: %w", err)
		}
	}

	if err := writeStamp(p.linkStampPath(build.Output), p.linkFingerprint(units, objectFPs, scriptBuf.Bytes(), build)); err != nil {
		return nil, fmt.Errorf("failed to record link fingerprint: %w", err)
	}

	result.Relinked = true
	return result, nil
}

// compileUnit builds one object unless its fingerprint stamp already covers
// the current inputs. Returns the fingerprint and whether a rebuild happened.
func (p *Pipeline) compileUnit(ctx context.Context, unit features.Unit, defines []features.Define) (string, bool, error) {
	logger := ctxlog.FromContext(ctx)

	source, err := os.ReadFile(unit.Source)
	if err != nil {
		return "", false, fmt.Errorf("unit %q: %w", unit.Name, err)
	}

	base := fingerprint(source, defines, p.Toolchain.ID())
	object := p.objectPath(unit.Name)
	stamp := object + ".fp"
	depFile := object + ".d"

	fp := depFingerprint(base, depFile)
	if readStamp(stamp) == fp {
		if _, err := os.Stat(object); err == nil {
			logger.Debug("Object up to date.", "unit", unit.Name)
			return fp, false, nil
		}
	}

	job := CompileJob{
		Source:  unit.Source,
		Object:  object,
		DepFile: depFile,
		Defines: defines,
	}

	switch strings.ToLower(filepath.Ext(unit.Source)) {
	case ".c":
		err = p.Toolchain.Compile(ctx, job)
	case ".s":
		err = p.Toolchain.Assemble(ctx, job)
	default:
		return "", false, fmt.Errorf("unit %q: unsupported source kind %q", unit.Name, filepath.Ext(unit.Source))
	}
	if err != nil {
		return "", false, fmt.Errorf("unit %q: %w", unit.Name, err)
	}

	// The compile refreshed the dep file; the stamp covers the headers it
	// now lists.
	fp = depFingerprint(base, depFile)
	if err := writeStamp(stamp, fp); err != nil {
		return "", false, fmt.Errorf("unit %q: %w", unit.Name, err)
	}
	logger.Debug("Object compiled.", "unit", unit.Name)
	return fp, true, nil
}

// needsLink decides whether the link step reruns: when the step graph marks
// it affected by a recompiled object, when the output is missing, or when
// the recorded link fingerprint no longer matches (script, archive list or
// output name changed).
func (p *Pipeline) needsLink(graph *dag.Graph, changed []string, units features.ObjectSet, objectFPs map[string]string, script []byte, build Build, executable string) (bool, error) {
	if len(changed) > 0 {
		affected, err := graph.Affected(changed...)
		if err != nil {
			return false, err
		}
		if affected[linkStep] {
			return true, nil
		}
	}
	if _, err := os.Stat(executable); err != nil {
		return true, nil
	}
	return readStamp(p.linkStampPath(build.Output)) != p.linkFingerprint(units, objectFPs, script, build), nil
}

func (p *Pipeline) linkFingerprint(units features.ObjectSet, objectFPs map[string]string, script []byte, build Build) string {
	h := bytes.Buffer{}
	for _, unit := range units {
		fmt.Fprintf(&h, "%s=%s\n", unit.Name, objectFPs[unit.Name])
	}
	for _, a := range build.Archives {
		fmt.Fprintf(&h, "archive:%s\n", a.Path)
	}
	fmt.Fprintf(&h, "output:%s\n", build.Output)
	h.Write(script)
	return fingerprint(h.Bytes(), nil, p.Toolchain.ID())
}

func (p *Pipeline) linkStampPath(output string) string {
	return filepath.Join(p.BuildDir, output+".elf.fp")
}

func (p *Pipeline) objectPath(name string) string {
	return filepath.Join(p.BuildDir, "obj", name+".o")
}

func stepID(name string) string {
	return "compile:" + name
}

// buildGraph wires one compile step per unit into the link step and checks
// the result is well formed.
func buildGraph(units features.ObjectSet) (*dag.Graph, error) {
	graph := dag.New()
	graph.AddNode(linkStep)
	for _, unit := range units {
		graph.AddNode(stepID(unit.Name))
		if err := graph.AddEdge(stepID(unit.Name), linkStep); err != nil {
			return nil, err
		}
	}
	if err := graph.DetectCycles(); err != nil {
		return nil, err
	}
	return graph, nil
}
