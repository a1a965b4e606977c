// Package pipeline turns a resolved object set into a linked BIOS
// executable. It compiles each unit through a Toolchain implementation,
// skips units whose fingerprints are unchanged, and links the boot-entry
// object, the unit objects and the driver archives (whole-archive, in
// manifest order) against the selected memory layout.
package pipeline
