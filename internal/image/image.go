package image

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"sort"
)

// FrameSize is the length of the appended checksum frame: a 4-byte image
// length followed by a 4-byte CRC-32 (IEEE), both in the target byte order.
const FrameSize = 8

// ErrBadChecksum reports a frame that does not match the image bytes.
var ErrBadChecksum = errors.New("image checksum mismatch")

// Objcopy extracts the raw memory image from a linked executable: the bytes
// of every loadable segment with file content, ordered by physical address,
// with inter-segment gaps zero-filled. Symbol tables and relocations are
// dropped; the result is exactly what gets flashed.
func Objcopy(elfBytes []byte) ([]byte, error) {
	f, err := elf.NewFile(bytes.NewReader(elfBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse executable: %w", err)
	}
	defer f.Close()

	var progs []*elf.Prog
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD || prog.Filesz == 0 {
			continue
		}
		progs = append(progs, prog)
	}
	if len(progs) == 0 {
		return nil, errors.New("no loadable segments in executable")
	}

	sort.Slice(progs, func(i, j int) bool {
		return progs[i].Paddr < progs[j].Paddr
	})

	base := progs[0].Paddr
	var raw []byte
	for _, prog := range progs {
		offset := prog.Paddr - base
		if offset < uint64(len(raw)) {
			return nil, fmt.Errorf("overlapping loadable segments at 0x%x", prog.Paddr)
		}
		// Zero-fill the gap up to this segment.
		raw = append(raw, make([]byte, offset-uint64(len(raw)))...)

		seg := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(seg, 0); err != nil {
			return nil, fmt.Errorf("failed to read segment at 0x%x: %w", prog.Paddr, err)
		}
		raw = append(raw, seg...)
	}

	return raw, nil
}

// Frame appends the integrity frame to a raw image. The byte order is the
// target's: little-endian targets get a little-endian frame, every other
// target the complementary order.
func Frame(raw []byte, order binary.ByteOrder) []byte {
	framed := make([]byte, len(raw)+FrameSize)
	copy(framed, raw)
	order.PutUint32(framed[len(raw):], uint32(len(raw)))
	order.PutUint32(framed[len(raw)+4:], crc32.ChecksumIEEE(raw))
	return framed
}

// Verify checks and strips the integrity frame, returning the raw image.
func Verify(framed []byte, order binary.ByteOrder) ([]byte, error) {
	if len(framed) < FrameSize {
		return nil, errors.New("image too short to carry a checksum frame")
	}
	raw := framed[:len(framed)-FrameSize]
	trailer := framed[len(framed)-FrameSize:]

	length := order.Uint32(trailer[0:4])
	sum := order.Uint32(trailer[4:8])
	if length != uint32(len(raw)) {
		return nil, fmt.Errorf("image length mismatch: frame says %d, have %d", length, len(raw))
	}
	if sum != crc32.ChecksumIEEE(raw) {
		return nil, ErrBadChecksum
	}
	return raw, nil
}

// Symbols returns the addresses of the named symbols in a linked executable.
// Missing symbols are an error: the layout contract requires all of them.
func Symbols(elfBytes []byte, names ...string) (map[string]uint32, error) {
	f, err := elf.NewFile(bytes.NewReader(elfBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse executable: %w", err)
	}
	defer f.Close()

	syms, err := f.Symbols()
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol table: %w", err)
	}

	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}

	found := make(map[string]uint32, len(names))
	for _, sym := range syms {
		if want[sym.Name] {
			found[sym.Name] = uint32(sym.Value)
		}
	}
	for _, name := range names {
		if _, ok := found[name]; !ok {
			return nil, fmt.Errorf("symbol %q not found in executable", name)
		}
	}
	return found, nil
}
