package frontend

import (
	"encoding/binary"
	"fmt"

	"decomp/internal/ir"
)

func init() {
	RegisterPlugin(PluginEntry{
		Name:           "elf",
		MinCoreVersion: "v1.0.0",
		Detect:         func(header []byte) bool { return hasPrefix(header, []byte{0x7f, 'E', 'L', 'F'}) },
		Open:           openELF,
	})
}

var elfMachineNames = map[uint16]string{
	0x03: "x86", 0x3e: "x86-64", 0x28: "arm", 0xb7: "arm64",
	0x08: "mips", 0x14: "ppc", 0x15: "ppc64", 0x2b: "sparc",
}

// openELF parses just enough of an ELF32/ELF64 header and section table to
// satisfy BinaryFile: e_machine, e_entry, and the section header string
// table.
func openELF(path string, data []byte) (BinaryFile, error) {
	if len(data) < 20 {
		return nil, fmt.Errorf("file too short for an ELF header")
	}
	is64 := data[4] == 2
	le := data[5] == 1
	if !le {
		return nil, fmt.Errorf("big-endian ELF not supported")
	}

	var eMachine uint16
	var eEntry uint64
	var shoff uint64
	var shentsize, shnum, shstrndx uint16

	if is64 {
		eMachine = binary.LittleEndian.Uint16(data[18:20])
		eEntry = binary.LittleEndian.Uint64(data[24:32])
		shoff = binary.LittleEndian.Uint64(data[40:48])
		shentsize = binary.LittleEndian.Uint16(data[58:60])
		shnum = binary.LittleEndian.Uint16(data[60:62])
		shstrndx = binary.LittleEndian.Uint16(data[62:64])
	} else {
		eMachine = binary.LittleEndian.Uint16(data[18:20])
		eEntry = uint64(binary.LittleEndian.Uint32(data[24:28]))
		shoff = uint64(binary.LittleEndian.Uint32(data[32:36]))
		shentsize = binary.LittleEndian.Uint16(data[46:48])
		shnum = binary.LittleEndian.Uint16(data[48:50])
		shstrndx = binary.LittleEndian.Uint16(data[50:52])
	}

	name, ok := elfMachineNames[eMachine]
	if !ok {
		name = fmt.Sprintf("elf-machine-0x%x", eMachine)
	}

	f := newRawFile(data, name, ir.Addr(eEntry))

	type sh struct {
		nameOff          uint32
		addr, off, size  uint64
		flags            uint64
	}
	sections := make([]sh, 0, shnum)
	for i := 0; i < int(shnum); i++ {
		base := int(shoff) + i*int(shentsize)
		if base+64 > len(data) {
			break
		}
		var s sh
		if is64 {
			s.nameOff = binary.LittleEndian.Uint32(data[base : base+4])
			s.flags = binary.LittleEndian.Uint64(data[base+8 : base+16])
			s.addr = binary.LittleEndian.Uint64(data[base+16 : base+24])
			s.off = binary.LittleEndian.Uint64(data[base+24 : base+32])
			s.size = binary.LittleEndian.Uint64(data[base+32 : base+40])
		} else {
			s.nameOff = binary.LittleEndian.Uint32(data[base : base+4])
			s.flags = uint64(binary.LittleEndian.Uint32(data[base+8 : base+12]))
			s.addr = uint64(binary.LittleEndian.Uint32(data[base+12 : base+16]))
			s.off = uint64(binary.LittleEndian.Uint32(data[base+16 : base+20]))
			s.size = uint64(binary.LittleEndian.Uint32(data[base+20 : base+24]))
		}
		sections = append(sections, s)
	}

	if int(shstrndx) < len(sections) {
		strtab := sections[shstrndx]
		for _, s := range sections {
			nm := cstr(data, int(strtab.off)+int(s.nameOff))
			if nm == "" {
				continue
			}
			const execFlag = 0x4
			f.sects[nm] = SectionInfo{
				Name:       nm,
				StartAddr:  ir.Addr(s.addr),
				Length:     s.size,
				Executable: s.flags&execFlag != 0,
			}
		}
	}

	return f, nil
}

func cstr(data []byte, off int) string {
	if off < 0 || off >= len(data) {
		return ""
	}
	end := off
	for end < len(data) && data[end] != 0 {
		end++
	}
	return string(data[off:end])
}
