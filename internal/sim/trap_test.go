package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrapMachine() *Machine {
	m := NewMachine(0, 0x1000)
	m.Regs[RegSP] = 0x800
	m.MTVec = 0x40
	m.vector = func(m *Machine) error {
		return Dispatch(m, func(*Machine) {})
	}
	return m
}

func TestDispatchRoundTrip(t *testing.T) {
	// For arbitrary initial register values, any register the ISR leaves
	// alone reads the same after the trap as immediately before it.
	rng := rand.New(rand.NewSource(1))

	for run := 0; run < 8; run++ {
		m := newTrapMachine()
		for _, reg := range frameRegs {
			m.Regs[reg] = rng.Uint32()
		}
		m.PC = rng.Uint32()
		before := m.Regs
		pcBefore := m.PC

		err := Raise(m, 11)
		require.NoError(t, err)

		assert.Equal(t, before, m.Regs, "register file must be transparent across a trap")
		assert.Equal(t, pcBefore, m.PC, "execution resumes at the interrupted PC")
	}
}

func TestDispatchRestoresClobberedRegisters(t *testing.T) {
	m := newTrapMachine()
	for _, reg := range frameRegs {
		m.Regs[reg] = uint32(reg) * 3
	}
	before := m.Regs

	m.vector = func(m *Machine) error {
		return Dispatch(m, func(m *Machine) {
			// The ISR may freely clobber every caller-saved register.
			for _, reg := range frameRegs {
				m.Regs[reg] = 0xbadc0de
			}
		})
	}

	require.NoError(t, Raise(m, 3))
	assert.Equal(t, before, m.Regs)
}

func TestDispatchFrameLayout(t *testing.T) {
	m := newTrapMachine()
	spBefore := m.Regs[RegSP]
	for _, reg := range frameRegs {
		m.Regs[reg] = 0x1000 + uint32(reg)
	}

	var inISR Frame
	var spInISR uint32
	m.vector = func(m *Machine) error {
		return Dispatch(m, func(m *Machine) {
			spInISR = m.Regs[RegSP]
			f, err := ReadFrame(m, spInISR)
			require.NoError(t, err)
			inISR = f
		})
	}

	require.NoError(t, Raise(m, 0))

	assert.Equal(t, spBefore-uint32(FrameBytes), spInISR, "frame sits in 16 word slots below the interrupted stack pointer")
	assert.Equal(t, spBefore, m.Regs[RegSP], "stack space is released on exit")

	// Slot order: ra, t0-t2, a0-a7, t3-t6.
	want := Frame{
		0x1000 + RegRA,
		0x1000 + RegT0, 0x1000 + RegT1, 0x1000 + RegT2,
		0x1000 + RegA0, 0x1000 + RegA1, 0x1000 + RegA2, 0x1000 + RegA3,
		0x1000 + RegA4, 0x1000 + RegA5, 0x1000 + RegA6, 0x1000 + RegA7,
		0x1000 + RegT3, 0x1000 + RegT4, 0x1000 + RegT5, 0x1000 + RegT6,
	}
	assert.Equal(t, want, inISR)
}

func TestDispatchISRAdjustsResumePC(t *testing.T) {
	// An ISR that needs to skip a faulting instruction bumps mepc; the
	// trap return resumes there.
	m := newTrapMachine()
	m.PC = 0x100
	m.vector = func(m *Machine) error {
		return Dispatch(m, func(m *Machine) {
			m.MEPC += 4
		})
	}

	require.NoError(t, Raise(m, 2))
	assert.Equal(t, uint32(0x104), m.PC)
}

func TestRaiseSetsCauseAndStacksInterruptEnable(t *testing.T) {
	m := newTrapMachine()
	m.PC = 0x200
	m.MStatus |= StatusMIE

	var inISR struct {
		mie   bool
		cause uint32
		mepc  uint32
		pc    uint32
	}
	m.vector = func(m *Machine) error {
		return Dispatch(m, func(m *Machine) {
			inISR.mie = m.MStatus&StatusMIE != 0
			inISR.cause = m.MCause
			inISR.mepc = m.MEPC
			inISR.pc = m.PC
		})
	}

	require.NoError(t, Raise(m, 8))

	assert.False(t, inISR.mie, "nested traps are disabled on trap entry")
	assert.Equal(t, uint32(8), inISR.cause)
	assert.Equal(t, uint32(0x200), inISR.mepc)
	assert.Equal(t, m.MTVec, inISR.pc, "control transfers through the trap vector")
	assert.NotZero(t, m.MStatus&StatusMIE, "trap return restores the interrupt-enable bit")
}

func TestNestedTrapFramesAreStrictlyNested(t *testing.T) {
	// A trap raised by the ISR itself pushes a second frame below the
	// first and pops it before the outer dispatcher resumes.
	m := newTrapMachine()
	m.MStatus |= StatusMIE
	for _, reg := range frameRegs {
		m.Regs[reg] = uint32(reg) + 0x40
	}
	before := m.Regs

	var depth, maxDepth int
	var innerSP, outerSP uint32
	var isr func(*Machine)
	isr = func(m *Machine) {
		depth++
		if depth > maxDepth {
			maxDepth = depth
		}
		if depth == 1 {
			outerSP = m.Regs[RegSP]
			m.PC = 0x321 // the outer frame must survive the nested trap
			require.NoError(t, Raise(m, 99))
		} else {
			innerSP = m.Regs[RegSP]
		}
		depth--
	}
	m.vector = func(m *Machine) error {
		return Dispatch(m, isr)
	}

	require.NoError(t, Raise(m, 1))

	assert.Equal(t, 2, maxDepth)
	assert.Equal(t, outerSP-uint32(FrameBytes), innerSP)
	assert.Equal(t, before, m.Regs)
}

func TestRaiseWithoutVector(t *testing.T) {
	m := NewMachine(0, 0x100)
	assert.ErrorContains(t, Raise(m, 1), "before a trap vector was installed")
}

func TestDispatchStackOutsideRAM(t *testing.T) {
	m := newTrapMachine()
	m.Regs[RegSP] = 0x10 // not enough room for a frame
	err := Raise(m, 1)
	assert.ErrorContains(t, err, "trap frame spill")
}
