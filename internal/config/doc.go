// Package config defines the format-agnostic build description for a BIOS
// image, along with the Loader interface for reading it from a manifest
// source.
//
// The `config.Model` is the single source of truth for the `features`,
// `layout` and `pipeline` packages. Concrete implementations of the Loader,
// such as for HCL, live in separate packages.
package config
