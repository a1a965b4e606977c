package sim

import (
	"encoding/binary"
	"fmt"
)

// General-purpose register indices, RV32I numbering.
const (
	RegZero = 0
	RegRA   = 1
	RegSP   = 2
	RegGP   = 3
	RegTP   = 4
	RegT0   = 5
	RegT1   = 6
	RegT2   = 7
	RegS0   = 8
	RegS1   = 9
	RegA0   = 10
	RegA1   = 11
	RegA2   = 12
	RegA3   = 13
	RegA4   = 14
	RegA5   = 15
	RegA6   = 16
	RegA7   = 17
	RegT3   = 28
	RegT4   = 29
	RegT5   = 30
	RegT6   = 31
)

// mstatus bits relevant to machine-mode trap handling.
const (
	StatusMIE  uint32 = 1 << 3
	StatusMPIE uint32 = 1 << 7
	StatusMPP  uint32 = 3 << 11
)

// WordSize is the machine word size in bytes. Region bounds are word
// multiples; the boot entry has no remainder handling.
const WordSize = 4

// Machine is a single-hart RV32 machine: a flat RAM window, the integer
// register file and the machine-mode CSRs the boot and trap paths touch.
// Words in RAM are little-endian, matching the target.
type Machine struct {
	// Base is the address of RAM[0].
	Base uint32
	RAM  []byte

	Regs [32]uint32
	PC   uint32

	MTVec   uint32
	MEPC    uint32
	MCause  uint32
	MStatus uint32

	// Halted is the terminal spin state entered when main returns.
	Halted bool

	// vector is the handler the trap vector address points at. Installed
	// by Boot, invoked by Raise.
	vector func(*Machine) error
}

// NewMachine returns a machine whose RAM spans [base, base+size).
func NewMachine(base, size uint32) *Machine {
	return &Machine{Base: base, RAM: make([]byte, size)}
}

func (m *Machine) offset(addr, n uint32) (uint32, error) {
	off := addr - m.Base
	if addr < m.Base || off+n > uint32(len(m.RAM)) || off+n < off {
		return 0, fmt.Errorf("address 0x%08x+%d outside RAM [0x%08x, 0x%08x)", addr, n, m.Base, m.Base+uint32(len(m.RAM)))
	}
	return off, nil
}

// LoadWord reads the word at addr.
func (m *Machine) LoadWord(addr uint32) (uint32, error) {
	off, err := m.offset(addr, WordSize)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.RAM[off:]), nil
}

// StoreWord writes the word at addr.
func (m *Machine) StoreWord(addr, value uint32) error {
	off, err := m.offset(addr, WordSize)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.RAM[off:], value)
	return nil
}

// WriteBytes copies data into RAM starting at addr.
func (m *Machine) WriteBytes(addr uint32, data []byte) error {
	off, err := m.offset(addr, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(m.RAM[off:], data)
	return nil
}

// ReadBytes returns a copy of n bytes of RAM starting at addr.
func (m *Machine) ReadBytes(addr, n uint32) ([]byte, error) {
	off, err := m.offset(addr, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, m.RAM[off:])
	return out, nil
}
