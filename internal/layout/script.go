package layout

import (
	"io"
	"text/template"
)

// scriptTemplate is the GNU linker script for a BIOS image. The six layout
// symbols (_fstack, _fdata, _edata, _fdata_rom, _fbss, _ebss) are the
// contract between the linked image and the boot entry: the .data image is
// stored in ROM at _fdata_rom and copied to _fdata.._edata at reset, and
// _fbss.._ebss is zeroed. Section bounds are word-aligned; the boot entry
// copies whole words and handles no remainder.
var scriptTemplate = template.Must(template.New("linker").Parse(`/* Generated for the {{.Name}} layout. Do not edit. */
OUTPUT_FORMAT("elf32-littleriscv")
ENTRY(_start)

MEMORY {
	rom  : ORIGIN = {{printf "0x%08x" .ROM.Origin}}, LENGTH = {{printf "0x%08x" .ROM.Length}}
	sram : ORIGIN = {{printf "0x%08x" .SRAM.Origin}}, LENGTH = {{printf "0x%08x" .SRAM.Length}}
}

SECTIONS
{
	.text :
	{
		_ftext = .;
		*(.text.start)
		*(.text .text.*)
		_etext = .;
	} > rom

	.rodata :
	{
		. = ALIGN(4);
		*(.rodata .rodata.*)
		. = ALIGN(4);
	} > rom

	.data : AT (ADDR(.rodata) + SIZEOF(.rodata))
	{
		. = ALIGN(4);
		_fdata = .;
		*(.data .data.*)
		*(.sdata .sdata.*)
		. = ALIGN(4);
		_edata = .;
	} > sram

	_fdata_rom = LOADADDR(.data);

	.bss :
	{
		. = ALIGN(4);
		_fbss = .;
		*(.bss .bss.*)
		*(.sbss .sbss.*)
		*(COMMON)
		. = ALIGN(4);
		_ebss = .;
	} > sram

	/DISCARD/ :
	{
		*(.eh_frame)
		*(.comment)
	}
}

PROVIDE(_fstack = ORIGIN(sram) + LENGTH(sram) - 8);
`))

// RenderScript writes the linker script for this layout.
func (d Descriptor) RenderScript(w io.Writer) error {
	return scriptTemplate.Execute(w, d)
}
