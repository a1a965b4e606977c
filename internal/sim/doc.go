// Package sim models the reset-to-main boot flow and the trap dispatch
// contract of the BIOS on a single-hart RV32 machine. It exists so the
// memory-layout and register-frame contracts the image relies on can be
// exercised on the build host: the boot entry's data copy and bss clear run
// over a real byte image, and trap entry/exit round-trips the exact
// caller-saved register frame the hardware path uses.
package sim
