package layout

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	t.Run("named platforms get dedicated layouts", func(t *testing.T) {
		assert.Equal(t, "rocket", Select("rocket").Name)
		assert.Equal(t, "blackparrot", Select("blackparrot").Name)
	})

	t.Run("everything else falls back to the default", func(t *testing.T) {
		for _, cpu := range []string{"", "vexriscv", "picorv32", "ROCKET", "unknown-cpu"} {
			assert.Equal(t, "default", Select(cpu).Name, "cpu %q", cpu)
		}
	})

	t.Run("layouts do not overlap their own regions", func(t *testing.T) {
		for _, cpu := range []string{"", "rocket", "blackparrot"} {
			d := Select(cpu)
			assert.Less(t, d.ROM.End(), d.SRAM.Origin+1, "layout %s", d.Name)
		}
	})
}

func TestRegionEnd(t *testing.T) {
	r := Region{Origin: 0x1000, Length: 0x200}
	assert.Equal(t, uint32(0x1200), r.End())
}

func TestRenderScript(t *testing.T) {
	d := Select("rocket")

	var buf bytes.Buffer
	require.NoError(t, d.RenderScript(&buf))
	script := buf.String()

	t.Run("memory regions match the descriptor", func(t *testing.T) {
		assert.Contains(t, script, fmt.Sprintf("ORIGIN = 0x%08x", d.ROM.Origin))
		assert.Contains(t, script, fmt.Sprintf("LENGTH = 0x%08x", d.ROM.Length))
		assert.Contains(t, script, fmt.Sprintf("ORIGIN = 0x%08x", d.SRAM.Origin))
	})

	t.Run("layout symbols are all defined", func(t *testing.T) {
		for _, sym := range []string{"_fdata", "_edata", "_fdata_rom", "_fbss", "_ebss", "_fstack"} {
			assert.Contains(t, script, sym)
		}
	})

	t.Run("entry point and data shadow", func(t *testing.T) {
		assert.Contains(t, script, "ENTRY(_start)")
		assert.Contains(t, script, "_fdata_rom = LOADADDR(.data);")
		assert.True(t, strings.Contains(script, "AT (ADDR(.rodata) + SIZEOF(.rodata))"))
	})
}
