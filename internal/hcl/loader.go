package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/TheRakeshPurohit/litex/internal/config"
	"github.com/TheRakeshPurohit/litex/internal/ctxlog"
	"github.com/TheRakeshPurohit/litex/internal/fsutil"
	"github.com/TheRakeshPurohit/litex/internal/schema"
)

// Loader reads HCL build manifests. It implements config.Loader.
type Loader struct{}

// NewLoader returns a Loader ready for use.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the manifest at path. A directory is treated as a set of
// manifest fragments: units and archives accumulate in file order, scalar
// attributes must be set by at most one fragment. Expressions in each
// fragment may reference `src`, the fragment's own directory.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat manifest path: %w", err)
	}

	var files []string
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to scan manifest directory: %w", err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no .hcl manifest files found in %s", path)
		}
	} else {
		files = []string{path}
	}
	logger.Debug("Loading build manifest.", "files", files)

	parser := hclparse.NewParser()
	model := &config.Model{Defines: map[string]string{}}
	seenUnits := map[string]string{}
	seenArchives := map[string]string{}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", file, diags)
		}

		var manifest schema.Manifest
		if diags := gohcl.DecodeBody(hclFile.Body, evalContext(file), &manifest); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest %s: %w", file, diags)
		}

		if err := mergeManifest(model, &manifest, file, seenUnits, seenArchives); err != nil {
			return nil, err
		}
		logger.Debug("Merged manifest fragment.", "file", file)
	}

	if model.Output == "" {
		model.Output = "bios"
	}

	logger.Debug("Build manifest loaded.", "units", len(model.Units), "archives", len(model.Archives))
	return model, nil
}

// evalContext builds the expression scope a manifest is decoded in. The
// `src` variable is the manifest file's own directory, so fragments can name
// sources relative to themselves regardless of the invocation directory.
func evalContext(file string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"src": cty.StringVal(filepath.Dir(file)),
		},
	}
}

// mergeManifest folds one decoded fragment into the model. Scalar conflicts
// and duplicate unit/archive names across fragments are errors.
func mergeManifest(model *config.Model, m *schema.Manifest, file string, seenUnits, seenArchives map[string]string) error {
	if err := setScalar(&model.CPU, m.CPU, "cpu", file); err != nil {
		return err
	}
	if err := setScalar(&model.Endianness, m.Endianness, "endianness", file); err != nil {
		return err
	}
	if err := setScalar(&model.Output, m.Output, "output", file); err != nil {
		return err
	}
	if err := setScalar(&model.CRT0, m.CRT0, "crt0", file); err != nil {
		return err
	}
	if err := setScalar(&model.TFTPPort, m.TFTPPort, "tftp_port", file); err != nil {
		return err
	}

	if m.Console != nil {
		if model.Console != (config.Console{}) {
			return fmt.Errorf("duplicate console block in %s", file)
		}
		model.Console = config.Console{
			Disabled:       m.Console.Disabled,
			Lite:           m.Console.Lite,
			NoAutocomplete: m.Console.NoAutocomplete,
			NoHistory:      m.Console.NoHistory,
			Editor:         m.Console.Editor,
			EditorLite:     m.Console.EditorLite,
			Complete:       m.Console.Complete,
		}
	}

	for _, u := range m.Units {
		if prev, ok := seenUnits[u.Name]; ok {
			return fmt.Errorf("duplicate unit %q in %s (first defined in %s)", u.Name, file, prev)
		}
		seenUnits[u.Name] = file
		model.Units = append(model.Units, &config.Unit{Name: u.Name, Source: u.Source})
	}

	for _, a := range m.Archives {
		if prev, ok := seenArchives[a.Name]; ok {
			return fmt.Errorf("duplicate archive %q in %s (first defined in %s)", a.Name, file, prev)
		}
		seenArchives[a.Name] = file
		model.Archives = append(model.Archives, &config.Archive{Name: a.Name, Path: a.Path})
	}

	for name, value := range m.Defines {
		if _, ok := model.Defines[name]; ok {
			return fmt.Errorf("duplicate define %q in %s", name, file)
		}
		model.Defines[name] = value
	}

	return nil
}

func setScalar(dst *string, value, name, file string) error {
	if value == "" {
		return nil
	}
	if *dst != "" && *dst != value {
		return fmt.Errorf("conflicting values for %q in %s", name, file)
	}
	*dst = value
	return nil
}
