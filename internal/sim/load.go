package sim

import (
	"encoding/binary"
	"fmt"

	"github.com/TheRakeshPurohit/litex/internal/image"
)

// LoadImage verifies a checksum-framed firmware image and places its raw
// bytes at addr, the ROM origin of the target layout.
func LoadImage(m *Machine, addr uint32, framed []byte, order binary.ByteOrder) error {
	raw, err := image.Verify(framed, order)
	if err != nil {
		return fmt.Errorf("refusing to load image: %w", err)
	}
	if err := m.WriteBytes(addr, raw); err != nil {
		return fmt.Errorf("failed to place image: %w", err)
	}
	return nil
}
