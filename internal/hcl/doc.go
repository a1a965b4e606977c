// Package hcl implements the config.Loader interface for HCL build
// manifests. It parses manifest files against the schema package's structs
// and translates them into the format-agnostic config model.
package hcl
