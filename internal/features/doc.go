// Package features resolves the build-time feature axes of a BIOS build
// into the concrete set of compilation units and preprocessor constants.
// Resolution is pure and total: every flag combination yields a valid
// (possibly degenerate) object set, never an error.
package features
