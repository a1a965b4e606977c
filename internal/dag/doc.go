// Package dag models the build-step dependency graph: one node per object,
// plus the link and post-process steps downstream of them. The pipeline uses
// it to decide which steps rerun after an incremental change and to reject
// malformed step wiring.
package dag
