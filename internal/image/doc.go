// Package image post-processes a linked BIOS executable into the flashable
// artifact: the raw bytes of the loadable segments followed by a CRC-framed
// trailer in the target byte order. All functions are pure; re-running the
// post-processor on the same input yields identical bytes.
package image
