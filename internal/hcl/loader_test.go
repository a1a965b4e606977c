package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
cpu        = "rocket"
output     = "bios"
crt0       = "src/crt0.S"
tftp_port  = "6069"

defines = {
  BUILD_ID = "test"
}

console {
  editor      = "src/term/readline.c"
  editor_lite = "src/term/readline_lite.c"
  complete    = "src/term/complete.c"
  no_history  = true
}

unit "main" {
  source = "src/main.c"
}

unit "boot" {
  source = "src/boot.c"
}

archive "libbase" {
  path = "lib/libbase.a"
}

archive "liblitedram" {
  path = "lib/liblitedram.a"
}
`

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSingleFile(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "bios.hcl", sampleManifest)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "rocket", model.CPU)
	assert.Equal(t, "bios", model.Output)
	assert.Equal(t, "src/crt0.S", model.CRT0)
	assert.Equal(t, "6069", model.TFTPPort)
	assert.Equal(t, map[string]string{"BUILD_ID": "test"}, model.Defines)

	assert.True(t, model.Console.NoHistory)
	assert.False(t, model.Console.Disabled)
	assert.Equal(t, "src/term/readline.c", model.Console.Editor)
	assert.Equal(t, "src/term/readline_lite.c", model.Console.EditorLite)
	assert.Equal(t, "src/term/complete.c", model.Console.Complete)

	require.Len(t, model.Units, 2)
	assert.Equal(t, "main", model.Units[0].Name)
	assert.Equal(t, "src/main.c", model.Units[0].Source)
	assert.Equal(t, "boot", model.Units[1].Name)

	require.Len(t, model.Archives, 2)
	assert.Equal(t, "lib/libbase.a", model.Archives[0].Path)
	assert.Equal(t, "lib/liblitedram.a", model.Archives[1].Path)
}

func TestLoadDefaultsOutputName(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "bios.hcl", `
crt0 = "crt0.S"
unit "main" { source = "main.c" }
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "bios", model.Output)
}

func TestLoadSrcVariable(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "bios.hcl", `
crt0 = "${src}/crt0.S"
unit "main" { source = "${src}/main.c" }
`)

	model, err := NewLoader().Load(context.Background(), filepath.Join(dir, "bios.hcl"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "crt0.S"), model.CRT0)
	require.Len(t, model.Units, 1)
	assert.Equal(t, filepath.Join(dir, "main.c"), model.Units[0].Source)
}

func TestLoadDirectoryMergesFragments(t *testing.T) {
	dir := t.TempDir()
	// Fragments merge in lexical file order.
	writeManifest(t, dir, "10-core.hcl", `
cpu  = "blackparrot"
crt0 = "crt0.S"
unit "main" { source = "main.c" }
`)
	writeManifest(t, dir, "20-drivers.hcl", `
unit "sdram" { source = "sdram.c" }
archive "libbase" { path = "libbase.a" }
`)

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "blackparrot", model.CPU)
	require.Len(t, model.Units, 2)
	assert.Equal(t, "main", model.Units[0].Name)
	assert.Equal(t, "sdram", model.Units[1].Name)
	require.Len(t, model.Archives, 1)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
		assert.Error(t, err)
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), t.TempDir())
		assert.ErrorContains(t, err, "no .hcl manifest files")
	})

	t.Run("malformed HCL", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(), "bad.hcl", `unit "x" {`)
		_, err := NewLoader().Load(context.Background(), path)
		assert.ErrorContains(t, err, "failed to parse manifest")
	})

	t.Run("misspelled block is rejected, not dropped", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(), "bios.hcl", `
crt0 = "crt0.S"
unit "main" { source = "main.c" }
uint "boot" { source = "boot.c" }
`)
		_, err := NewLoader().Load(context.Background(), path)
		assert.ErrorContains(t, err, "failed to decode manifest")
	})

	t.Run("unknown attribute is rejected", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(), "bios.hcl", `
crt0      = "crt0.S"
tftp_prot = "6069"
`)
		_, err := NewLoader().Load(context.Background(), path)
		assert.ErrorContains(t, err, "failed to decode manifest")
	})

	t.Run("duplicate unit across fragments", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, "a.hcl", `unit "main" { source = "a.c" }`)
		writeManifest(t, dir, "b.hcl", `unit "main" { source = "b.c" }`)
		_, err := NewLoader().Load(context.Background(), dir)
		assert.ErrorContains(t, err, `duplicate unit "main"`)
	})

	t.Run("conflicting scalar across fragments", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, "a.hcl", `cpu = "rocket"`)
		writeManifest(t, dir, "b.hcl", `cpu = "blackparrot"`)
		_, err := NewLoader().Load(context.Background(), dir)
		assert.ErrorContains(t, err, `conflicting values for "cpu"`)
	})

	t.Run("duplicate console block", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, "a.hcl", `console { editor = "a.c" }`)
		writeManifest(t, dir, "b.hcl", `console { lite = true }`)
		_, err := NewLoader().Load(context.Background(), dir)
		assert.ErrorContains(t, err, "duplicate console block")
	})
}
