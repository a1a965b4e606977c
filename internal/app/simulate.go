package app

import (
	"context"
	"fmt"
	"hash/crc32"

	"github.com/TheRakeshPurohit/litex/internal/ctxlog"
	"github.com/TheRakeshPurohit/litex/internal/image"
	"github.com/TheRakeshPurohit/litex/internal/layout"
	"github.com/TheRakeshPurohit/litex/internal/sim"
)

// simulate runs the boot flow over the freshly built image: verify the
// checksum frame, place the image at the ROM origin, then walk the reset
// sequence up to the entry hand-off and report the initialized regions.
func (a *App) simulate(ctx context.Context, elfBytes, framed []byte, desc layout.Descriptor) error {
	logger := ctxlog.FromContext(ctx)

	syms, err := image.Symbols(elfBytes, sim.BootSymbols...)
	if err != nil {
		return err
	}
	mm, err := sim.MapFromSymbols(syms)
	if err != nil {
		return err
	}

	base := desc.ROM.Origin
	if desc.SRAM.Origin < base {
		base = desc.SRAM.Origin
	}
	end := desc.ROM.End()
	if desc.SRAM.End() > end {
		end = desc.SRAM.End()
	}

	m := sim.NewMachine(base, end-base)
	if err := sim.LoadImage(m, desc.ROM.Origin, framed, a.model.ByteOrder()); err != nil {
		return err
	}
	logger.Info("Image verified and loaded.", "rom", fmt.Sprintf("0x%08x", desc.ROM.Origin))

	entered := false
	err = sim.Boot(m, mm, func(*sim.Machine) {}, func(m *sim.Machine) {
		entered = true
		data, err := m.ReadBytes(mm.DataStart, mm.DataEnd-mm.DataStart)
		if err != nil {
			logger.Error("Failed to read initialized data region.", "error", err)
			return
		}
		logger.Info("Boot flow reached the entry point.",
			"sp", fmt.Sprintf("0x%08x", m.Regs[sim.RegSP]),
			"mtvec", fmt.Sprintf("0x%08x", m.MTVec),
			"data_bytes", len(data),
			"data_crc", fmt.Sprintf("0x%08x", crc32.ChecksumIEEE(data)),
			"bss_bytes", mm.BSSEnd-mm.BSSStart)
	})
	if err != nil {
		return err
	}
	if !entered {
		return fmt.Errorf("boot flow never reached the entry point")
	}

	logger.Info("Boot simulation finished.", "halted", m.Halted)
	return nil
}
