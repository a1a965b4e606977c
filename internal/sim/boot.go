package sim

import "fmt"

// MemoryMap carries the layout symbols the boot entry consumes, by value.
// DataROM..DataROM+(DataEnd-DataStart) is the ROM-resident shadow of the
// initialized data region; every bound is a word multiple by the linker
// script's construction, and Boot does not re-check that.
type MemoryMap struct {
	StackTop   uint32
	TrapVector uint32
	DataROM    uint32
	DataStart  uint32
	DataEnd    uint32
	BSSStart   uint32
	BSSEnd     uint32
}

// BootSymbols are the linkage symbols a linked image must export for the
// boot entry, in the order the layout contract names them.
var BootSymbols = []string{"_fstack", "_fdata", "_edata", "_fdata_rom", "_fbss", "_ebss", "trap_vector"}

// MapFromSymbols builds a MemoryMap from a linked image's symbol addresses.
func MapFromSymbols(syms map[string]uint32) (MemoryMap, error) {
	for _, name := range BootSymbols {
		if _, ok := syms[name]; !ok {
			return MemoryMap{}, fmt.Errorf("layout symbol %q missing", name)
		}
	}
	return MemoryMap{
		StackTop:   syms["_fstack"],
		TrapVector: syms["trap_vector"],
		DataROM:    syms["_fdata_rom"],
		DataStart:  syms["_fdata"],
		DataEnd:    syms["_edata"],
		BSSStart:   syms["_fbss"],
		BSSEnd:     syms["_ebss"],
	}, nil
}

// Boot runs the reset sequence: stack and trap vector setup, data image
// copy, bss clear, then the hand-off to main. If main returns, the machine
// enters the halted spin state; a bare-metal image has nowhere else to go.
//
// isr is the external interrupt service routine the trap dispatcher calls;
// main is the managed entry point. Neither takes arguments: the ISR reads
// cause state from the CSRs itself.
func Boot(m *Machine, mm MemoryMap, isr, main func(*Machine)) error {
	// Reset state: stack pointer and trap vector first, so a trap taken
	// during initialization already lands in the dispatcher.
	m.Regs[RegSP] = mm.StackTop
	m.MTVec = mm.TrapVector
	m.vector = func(m *Machine) error {
		return Dispatch(m, isr)
	}

	// Copy the initialized-data image from its ROM shadow, word by word,
	// until the destination cursor reaches _edata.
	src, dst := mm.DataROM, mm.DataStart
	for dst < mm.DataEnd {
		word, err := m.LoadWord(src)
		if err != nil {
			return fmt.Errorf("data copy: %w", err)
		}
		if err := m.StoreWord(dst, word); err != nil {
			return fmt.Errorf("data copy: %w", err)
		}
		src += WordSize
		dst += WordSize
	}

	// Zero the uninitialized-data region.
	for addr := mm.BSSStart; addr < mm.BSSEnd; addr += WordSize {
		if err := m.StoreWord(addr, 0); err != nil {
			return fmt.Errorf("bss clear: %w", err)
		}
	}

	main(m)

	m.Halted = true
	return nil
}
