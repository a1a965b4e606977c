// Package testutil provides shared fixtures for tests: a minimal ELF32
// writer so image post-processing and boot simulation can be exercised
// without a cross toolchain on the build host.
package testutil

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// Segment is one loadable segment of a fixture executable.
type Segment struct {
	Paddr uint32
	Data  []byte
}

const (
	ehsize    = 52
	phentsize = 32
	shentsize = 40
	symsize   = 16
)

// MakeELF builds a little-endian ELF32 RISC-V executable image containing
// the given loadable segments and symbol table. The layout is the minimum
// debug/elf accepts: program headers, segment payloads, a symtab/strtab
// pair and their section headers.
func MakeELF(entry uint32, segments []Segment, symbols map[string]uint32) []byte {
	le := binary.LittleEndian
	var buf bytes.Buffer

	phoff := uint32(ehsize)
	payloadOff := phoff + uint32(len(segments))*phentsize

	// Segment payload offsets.
	offsets := make([]uint32, len(segments))
	off := payloadOff
	for i, seg := range segments {
		offsets[i] = off
		off += uint32(len(seg.Data))
	}

	// Symbol table: null entry first, then sorted for determinism.
	names := make([]string, 0, len(symbols))
	for name := range symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	var strtab bytes.Buffer
	strtab.WriteByte(0)
	var symtab bytes.Buffer
	symtab.Write(make([]byte, symsize))
	for _, name := range names {
		nameOff := uint32(strtab.Len())
		strtab.WriteString(name)
		strtab.WriteByte(0)

		var ent [symsize]byte
		le.PutUint32(ent[0:], nameOff)
		le.PutUint32(ent[4:], symbols[name])
		ent[12] = 0x10 // STB_GLOBAL, STT_NOTYPE
		le.PutUint16(ent[14:], 0xfff1)
		symtab.Write(ent[:])
	}

	symtabOff := off
	strtabOff := symtabOff + uint32(symtab.Len())
	shoff := strtabOff + uint32(strtab.Len())

	// ELF header.
	ident := [16]byte{0x7f, 'E', 'L', 'F', 1 /*ELFCLASS32*/, 1 /*ELFDATA2LSB*/, 1 /*EV_CURRENT*/}
	buf.Write(ident[:])
	writeU16(&buf, 2)   // e_type: ET_EXEC
	writeU16(&buf, 243) // e_machine: EM_RISCV
	writeU32(&buf, 1)   // e_version
	writeU32(&buf, entry)
	writeU32(&buf, phoff)
	writeU32(&buf, shoff)
	writeU32(&buf, 0) // e_flags
	writeU16(&buf, ehsize)
	writeU16(&buf, phentsize)
	writeU16(&buf, uint16(len(segments)))
	writeU16(&buf, shentsize)
	writeU16(&buf, 3) // e_shnum: null, symtab, strtab
	writeU16(&buf, 0) // e_shstrndx

	// Program headers.
	for i, seg := range segments {
		writeU32(&buf, 1) // PT_LOAD
		writeU32(&buf, offsets[i])
		writeU32(&buf, seg.Paddr) // vaddr
		writeU32(&buf, seg.Paddr)
		writeU32(&buf, uint32(len(seg.Data)))
		writeU32(&buf, uint32(len(seg.Data)))
		writeU32(&buf, 5) // flags: R+X
		writeU32(&buf, 4) // align
	}

	for _, seg := range segments {
		buf.Write(seg.Data)
	}
	buf.Write(symtab.Bytes())
	buf.Write(strtab.Bytes())

	// Section headers: null, .symtab, .strtab.
	buf.Write(make([]byte, shentsize))

	writeU32(&buf, 0)                        // sh_name
	writeU32(&buf, 2)                        // SHT_SYMTAB
	writeU32(&buf, 0)                        // sh_flags
	writeU32(&buf, 0)                        // sh_addr
	writeU32(&buf, symtabOff)                // sh_offset
	writeU32(&buf, uint32(symtab.Len()))     // sh_size
	writeU32(&buf, 2)                        // sh_link: strtab index
	writeU32(&buf, 1)                        // sh_info: first global
	writeU32(&buf, 4)                        // sh_addralign
	writeU32(&buf, symsize)                  // sh_entsize

	writeU32(&buf, 0)                    // sh_name
	writeU32(&buf, 3)                    // SHT_STRTAB
	writeU32(&buf, 0)                    // sh_flags
	writeU32(&buf, 0)                    // sh_addr
	writeU32(&buf, strtabOff)            // sh_offset
	writeU32(&buf, uint32(strtab.Len())) // sh_size
	writeU32(&buf, 0)                    // sh_link
	writeU32(&buf, 0)                    // sh_info
	writeU32(&buf, 1)                    // sh_addralign
	writeU32(&buf, 0)                    // sh_entsize

	return buf.Bytes()
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
