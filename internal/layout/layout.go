package layout

// Region is one addressable memory region of the target.
type Region struct {
	Origin uint32
	Length uint32
}

// End returns the first address past the region.
func (r Region) End() uint32 {
	return r.Origin + r.Length
}

// Descriptor is the memory map of one target variant. ROM holds code,
// read-only data and the load-time shadow of initialized data; SRAM holds
// the runtime data and bss regions and the stack.
type Descriptor struct {
	Name string
	ROM  Region
	SRAM Region
}

// The closed set of layouts. Rocket and BlackParrot place the BIOS in
// regions carved out of their own address maps; everything else uses the
// generic SoC map.
var (
	defaultLayout = Descriptor{
		Name: "default",
		ROM:  Region{Origin: 0x0000_0000, Length: 0x0002_0000},
		SRAM: Region{Origin: 0x0010_0000, Length: 0x0000_2000},
	}

	rocketLayout = Descriptor{
		Name: "rocket",
		ROM:  Region{Origin: 0x0001_0000, Length: 0x0004_0000},
		SRAM: Region{Origin: 0x0011_0000, Length: 0x0000_4000},
	}

	blackparrotLayout = Descriptor{
		Name: "blackparrot",
		ROM:  Region{Origin: 0x7000_0000, Length: 0x0002_0000},
		SRAM: Region{Origin: 0x7010_0000, Length: 0x0000_4000},
	}
)

// Select returns the layout for the given CPU identifier. Unrecognized
// identifiers, including the empty string, resolve to the default layout.
// This is an intentional fallback, not a failure path.
func Select(cpu string) Descriptor {
	switch cpu {
	case "rocket":
		return rocketLayout
	case "blackparrot":
		return blackparrotLayout
	default:
		return defaultLayout
	}
}
