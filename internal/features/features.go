package features

import (
	"sort"

	"github.com/TheRakeshPurohit/litex/internal/config"
)

// Define is one preprocessor constant visible to every compiled unit.
// A Define with an empty Value is a bare flag (-DNAME).
type Define struct {
	Name  string
	Value string
}

// Unit is one member of the resolved object set.
type Unit struct {
	Name   string
	Source string
}

// ObjectSet is the ordered set of compilation units selected for a build:
// the manifest's unconditional units first, then the selected console units.
type ObjectSet []Unit

// Constants defined by the console feature axes. The console and terminal
// sources test these with the preprocessor.
const (
	DefineConsoleDisable        = "CONSOLE_DISABLE"
	DefineConsoleNoAutocomplete = "CONSOLE_NO_AUTOCOMPLETE"
	DefineConsoleLite           = "CONSOLE_LITE"
	DefineConsoleNoHistory      = "CONSOLE_NO_HISTORY"
	DefineTFTPServerPort        = "TFTP_SERVER_PORT"
)

// Resolve maps the build configuration to the object set and define list.
// First match wins per axis:
//
//   - console axis: disabled excludes every console unit; otherwise lite or
//     no-autocomplete suppresses the completion unit.
//   - editor axis: lite selects the simplified line editor, otherwise the
//     full one. At most one editor is ever selected.
//   - history axis: independent of the others.
//   - network axis: the port override is carried verbatim; validating it is
//     the compiler's job.
func Resolve(model *config.Model) (ObjectSet, []Define) {
	var set ObjectSet
	for _, u := range model.Units {
		set = append(set, Unit{Name: u.Name, Source: u.Source})
	}

	var defines []Define
	console := model.Console

	if console.Disabled {
		defines = append(defines, Define{Name: DefineConsoleDisable})
	} else {
		if console.Lite {
			defines = append(defines, Define{Name: DefineConsoleLite})
			set = append(set, Unit{Name: "readline_lite", Source: console.EditorLite})
		} else {
			set = append(set, Unit{Name: "readline", Source: console.Editor})
		}

		if console.Lite || console.NoAutocomplete {
			defines = append(defines, Define{Name: DefineConsoleNoAutocomplete})
		} else {
			set = append(set, Unit{Name: "complete", Source: console.Complete})
		}
	}

	if console.NoHistory {
		defines = append(defines, Define{Name: DefineConsoleNoHistory})
	}

	if model.TFTPPort != "" {
		defines = append(defines, Define{Name: DefineTFTPServerPort, Value: model.TFTPPort})
	}

	// Extra manifest defines, sorted for a stable define list. Object
	// fingerprints hash the define list, so order must be deterministic.
	names := make([]string, 0, len(model.Defines))
	for name := range model.Defines {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		defines = append(defines, Define{Name: name, Value: model.Defines[name]})
	}

	return set, defines
}
