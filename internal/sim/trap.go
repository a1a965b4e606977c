package sim

import (
	"errors"
	"fmt"
)

// frameRegs is the fixed save order of the trap frame: the return address,
// three temporaries, the eight argument registers, then the remaining four
// temporaries. These are exactly the registers the calling convention lets
// the ISR clobber; callee-saved registers survive the call on their own.
var frameRegs = [16]int{
	RegRA,
	RegT0, RegT1, RegT2,
	RegA0, RegA1, RegA2, RegA3, RegA4, RegA5, RegA6, RegA7,
	RegT3, RegT4, RegT5, RegT6,
}

// FrameWords is the number of word slots a trap frame occupies on the stack.
const FrameWords = len(frameRegs)

// FrameBytes is the stack space one trap frame reserves.
const FrameBytes = FrameWords * WordSize

// Frame is a snapshot of the sixteen saved registers in slot order.
type Frame [FrameWords]uint32

// ReadFrame returns the trap frame currently stored at sp. Test and
// diagnostic helper; the dispatcher itself works directly on the stack.
func ReadFrame(m *Machine, sp uint32) (Frame, error) {
	var f Frame
	for i := range f {
		word, err := m.LoadWord(sp + uint32(i*WordSize))
		if err != nil {
			return Frame{}, err
		}
		f[i] = word
	}
	return f, nil
}

// Dispatch is the trap-entry routine the trap vector points at. It reserves
// a frame below the interrupted code's stack pointer, spills the sixteen
// caller-saved registers in slot order, calls the external ISR, reloads the
// frame in the same order, releases the stack and performs the trap return.
// Frames nest strictly: a trap raised by the ISR pushes its own frame below
// this one and pops it before returning here.
func Dispatch(m *Machine, isr func(*Machine)) error {
	sp := m.Regs[RegSP] - uint32(FrameBytes)
	m.Regs[RegSP] = sp

	for i, reg := range frameRegs {
		if err := m.StoreWord(sp+uint32(i*WordSize), m.Regs[reg]); err != nil {
			return fmt.Errorf("trap frame spill: %w", err)
		}
	}

	isr(m)

	for i, reg := range frameRegs {
		word, err := m.LoadWord(sp + uint32(i*WordSize))
		if err != nil {
			return fmt.Errorf("trap frame reload: %w", err)
		}
		m.Regs[reg] = word
	}
	m.Regs[RegSP] = sp + uint32(FrameBytes)

	mret(m)
	return nil
}

// Raise models hardware trap entry: save the interrupted PC and the cause,
// stack the interrupt-enable bit (MIE moves to MPIE and clears, so nested
// traps are disabled until the dispatcher's trap return restores it), and
// transfer to the trap vector.
func Raise(m *Machine, cause uint32) error {
	if m.vector == nil {
		return errors.New("trap raised before a trap vector was installed")
	}

	m.MEPC = m.PC
	m.MCause = cause

	m.MStatus &^= StatusMPIE
	if m.MStatus&StatusMIE != 0 {
		m.MStatus |= StatusMPIE
	}
	m.MStatus &^= StatusMIE
	m.MStatus |= StatusMPP // previous privilege: machine

	m.PC = m.MTVec
	return m.vector(m)
}

// mret is the trap-return instruction: resume at the (possibly ISR-adjusted)
// saved PC, restore the interrupt-enable bit from its stacked copy and drop
// back to the stacked privilege level.
func mret(m *Machine) {
	m.PC = m.MEPC

	m.MStatus &^= StatusMIE
	if m.MStatus&StatusMPIE != 0 {
		m.MStatus |= StatusMIE
	}
	m.MStatus |= StatusMPIE
	m.MStatus &^= StatusMPP
}
