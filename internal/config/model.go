package config

import "encoding/binary"

// Model is the unified, format-agnostic representation of one BIOS build:
// which CPU the image targets, which console features are compiled in, and
// which compilation units and archives feed the link. It is fixed for the
// duration of one build invocation and never mutated after overrides are
// applied.
type Model struct {
	// CPU selects the target memory layout. Unknown values fall back to
	// the default layout; this is not an error.
	CPU string

	// Endianness is the target byte order, "little" or "big". Empty means
	// little.
	Endianness string

	// Output is the base name for build artifacts (default "bios").
	Output string

	// CRT0 is the path of the boot-entry assembly source. It is always
	// compiled and always linked first.
	CRT0 string

	Console Console

	// TFTPPort overrides the compiled-in TFTP server port. It is carried
	// verbatim as a preprocessor constant; a malformed value is the
	// compiler's diagnostic to make, not ours.
	TFTPPort string

	// Units are the unconditional compilation units, in manifest order.
	Units []*Unit

	// Archives are linked whole-archive, in manifest order. Order matters:
	// device-driver archives register themselves at link time.
	Archives []*Archive

	// Defines are extra preprocessor constants passed to every unit.
	Defines map[string]string
}

// Console holds the console feature axes and the sources they select from.
type Console struct {
	Disabled       bool
	Lite           bool
	NoAutocomplete bool
	NoHistory      bool

	// Editor is the full line-editor source, EditorLite the simplified
	// one. Complete is the autocompletion support unit.
	Editor     string
	EditorLite string
	Complete   string
}

// Unit is a single compilation unit from the manifest.
type Unit struct {
	Name   string
	Source string
}

// Archive is a static library included in the link.
type Archive struct {
	Name string
	Path string
}

// ByteOrder returns the binary byte order matching the configured target
// endianness. Little-endian targets get binary.LittleEndian, all others the
// complementary order.
func (m *Model) ByteOrder() binary.ByteOrder {
	if m.Endianness == "" || m.Endianness == "little" {
		return binary.LittleEndian
	}
	return binary.BigEndian
}
