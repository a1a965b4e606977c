// Package layout maps a CPU identifier to the memory layout of the target:
// the ROM and scratchpad RAM regions and the linker script describing them.
// The set of layouts is a closed enumeration; unknown identifiers
// deliberately fall back to the default layout.
package layout
