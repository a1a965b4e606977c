// Package schema holds the HCL-specific struct definitions a build manifest
// is decoded against. The hcl package translates these into the
// format-agnostic config model. The structs are exhaustive: content the
// schema does not name fails decoding, so a typo'd block cannot silently
// drop a unit from the build.
package schema

// Console represents the `console` block of a manifest. The boolean
// attributes are the feature axes; the string attributes name the sources
// the feature resolver selects between.
type Console struct {
	Disabled       bool `hcl:"disabled,optional"`
	Lite           bool `hcl:"lite,optional"`
	NoAutocomplete bool `hcl:"no_autocomplete,optional"`
	NoHistory      bool `hcl:"no_history,optional"`

	Editor     string `hcl:"editor,optional"`
	EditorLite string `hcl:"editor_lite,optional"`
	Complete   string `hcl:"complete,optional"`
}

// Unit represents a `unit` block: one unconditional compilation unit.
type Unit struct {
	Name   string `hcl:"name,label"`
	Source string `hcl:"source"`
}

// Archive represents an `archive` block: a static library linked
// whole-archive. Block order in the manifest is link order.
type Archive struct {
	Name string `hcl:"name,label"`
	Path string `hcl:"path"`
}

// Manifest represents the top-level structure of a build manifest file.
type Manifest struct {
	CPU        string            `hcl:"cpu,optional"`
	Endianness string            `hcl:"endianness,optional"`
	Output     string            `hcl:"output,optional"`
	CRT0       string            `hcl:"crt0,optional"`
	TFTPPort   string            `hcl:"tftp_port,optional"`
	Defines    map[string]string `hcl:"defines,optional"`

	Console  *Console   `hcl:"console,block"`
	Units    []*Unit    `hcl:"unit,block"`
	Archives []*Archive `hcl:"archive,block"`
}
