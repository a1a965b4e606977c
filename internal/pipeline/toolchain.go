package pipeline

import (
	"context"

	"github.com/TheRakeshPurohit/litex/internal/features"
)

// CompileJob describes one source-to-object translation.
type CompileJob struct {
	// Source is the input file. Its extension selects the toolchain verb:
	// .c is compiled, .S/.s is assembled.
	Source string
	// Object is the output path.
	Object string
	// DepFile receives the make-style header dependency rule. The pipeline
	// folds the listed headers into the object's fingerprint, so a changed
	// header invalidates the object on the next run.
	DepFile string
	// Defines are the preprocessor constants visible to the unit.
	Defines []features.Define
}

// LinkJob describes the final link.
type LinkJob struct {
	// Output is the executable path.
	Output string
	// Script is the linker script path.
	Script string
	// MapFile receives the link map.
	MapFile string
	// Objects are linked in order; the boot-entry object comes first.
	Objects []string
	// Archives are linked whole-archive, in order. Every member is
	// retained even without an apparent reference: driver archives rely
	// on link-time registration.
	Archives []string
}

// Toolchain abstracts the cross toolchain the pipeline drives. Implementations
// surface toolchain diagnostics verbatim in the returned error.
type Toolchain interface {
	// ID identifies the toolchain and its base flags. It is folded into
	// object fingerprints so switching toolchains invalidates the cache.
	ID() string

	Compile(ctx context.Context, job CompileJob) error
	Assemble(ctx context.Context, job CompileJob) error
	Link(ctx context.Context, job LinkJob) error
}
