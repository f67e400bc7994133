package frontend

import (
	"encoding/binary"
	"fmt"

	"decomp/internal/ir"
)

// The formats in this file are identified by magic alone; per-format
// section/symbol parsing beyond that is a loader-plugin concern out of
// this core's scope. Each still returns a fully-functioning BinaryFile
// over the raw image, so a caller gets native reads and an entry point
// even before a real plugin for the format is written.

func init() {
	RegisterPlugin(PluginEntry{
		Name:           "pe",
		MinCoreVersion: "v1.0.0",
		Detect:         detectPE,
		Open:           openPE,
	})
	RegisterPlugin(PluginEntry{
		Name:           "macho",
		MinCoreVersion: "v1.0.0",
		Detect: func(header []byte) bool {
			return hasPrefix(header, []byte{0xfe, 0xed, 0xfa, 0xce}) || hasPrefix(header, []byte{0xce, 0xfa, 0xed, 0xfe})
		},
		Open: func(path string, data []byte) (BinaryFile, error) {
			return newRawFile(data, "macho", 0), nil
		},
	})
	RegisterPlugin(PluginEntry{
		Name:           "palm",
		MinCoreVersion: "v1.0.0",
		Detect:         detectPalm,
		Open: func(path string, data []byte) (BinaryFile, error) {
			return newRawFile(data, "palm-68k", 0), nil
		},
	})
	RegisterPlugin(PluginEntry{
		Name:           "hp-som",
		MinCoreVersion: "v1.0.0",
		Detect: func(header []byte) bool {
			return len(header) >= 4 && binary.BigEndian.Uint32(header[:4]) == hpSOMMagic
		},
		Open: func(path string, data []byte) (BinaryFile, error) {
			return newRawFile(data, "hp-pa-risc", 0), nil
		},
	})
	RegisterPlugin(PluginEntry{
		Name:           "coff",
		MinCoreVersion: "v1.0.0",
		Detect:         func(header []byte) bool { return hasPrefix(header, []byte{0x4c, 0x01}) },
		Open: func(path string, data []byte) (BinaryFile, error) {
			return newRawFile(data, "x86-coff", 0), nil
		},
	})
}

// hpSOMMagic is HP-SOM's fixed first-four-byte fingerprint.
const hpSOMMagic = 0x020b0106

func detectPalm(header []byte) bool {
	if len(header) < 0x40 {
		return false
	}
	tag := header[0x3c:0x40]
	return string(tag) == "appl" || string(tag) == "panl"
}

func detectPE(header []byte) bool {
	if len(header) < 0x40 || header[0] != 'M' || header[1] != 'Z' {
		return false
	}
	peOff := binary.LittleEndian.Uint32(header[0x3c:0x40])
	return peOff > 0 // full "PE\0\0" confirmation happens in Open once the whole file is available
}

func openPE(path string, data []byte) (BinaryFile, error) {
	if len(data) < 0x40 {
		return nil, fmt.Errorf("file too short for a PE DOS header")
	}
	peOff := binary.LittleEndian.Uint32(data[0x3c:0x40])
	if uint64(peOff)+24 > uint64(len(data)) || string(data[peOff:peOff+4]) != "PE\x00\x00" {
		return nil, fmt.Errorf("missing PE signature at declared offset 0x%x", peOff)
	}
	coffOff := peOff + 4
	machine := binary.LittleEndian.Uint16(data[coffOff : coffOff+2])
	name := peMachineNames[machine]
	if name == "" {
		name = fmt.Sprintf("pe-machine-0x%x", machine)
	}

	optOff := coffOff + 20
	var entry uint64
	if uint64(optOff)+20 <= uint64(len(data)) {
		entry = uint64(binary.LittleEndian.Uint32(data[optOff+16 : optOff+20]))
	}
	return newRawFile(data, name, ir.Addr(entry)), nil
}

var peMachineNames = map[uint16]string{
	0x014c: "x86",
	0x8664: "x86-64",
	0x01c0: "arm",
	0xaa64: "arm64",
}
