package frontend

import (
	"encoding/binary"
	"fmt"
	"math"

	"decomp/internal/ir"
)

// rawFile is the common, format-agnostic storage every plugin in this
// package builds on: the whole file's bytes, plus whatever the
// format-specific parser discovered (machine name, entry point, named
// sections, statically-resolved symbols). Every native read addresses
// directly into the raw file image, which is sufficient for the core's own
// consumption of this interface; deeper per-format loader internals are out
// of scope here.
type rawFile struct {
	data    []byte
	machine string
	entry   ir.Addr
	sects   map[string]SectionInfo
	syms    map[ir.Addr]string
	dynProc map[ir.Addr]string
	deps    []string
}

func newRawFile(data []byte, machine string, entry ir.Addr) *rawFile {
	return &rawFile{
		data:    data,
		machine: machine,
		entry:   entry,
		sects:   make(map[string]SectionInfo),
		syms:    make(map[ir.Addr]string),
		dynProc: make(map[ir.Addr]string),
	}
}

func (f *rawFile) Machine() string         { return f.machine }
func (f *rawFile) MainEntryPoint() ir.Addr { return f.entry }

func (f *rawFile) SectionInfoByName(name string) (SectionInfo, bool) {
	s, ok := f.sects[name]
	return s, ok
}

func (f *rawFile) IsDynamicLinkedProc(addr ir.Addr) bool {
	_, ok := f.dynProc[addr]
	return ok
}

func (f *rawFile) DynamicProcName(addr ir.Addr) (string, bool) {
	n, ok := f.dynProc[addr]
	return n, ok
}

func (f *rawFile) Symbols() map[ir.Addr]string { return f.syms }
func (f *rawFile) DependencyList() []string     { return f.deps }

func (f *rawFile) bounds(addr ir.Addr, width int) error {
	if uint64(addr)+uint64(width) > uint64(len(f.data)) {
		return fmt.Errorf("read of %d bytes at %s beyond end of file (len %d)", width, addr, len(f.data))
	}
	return nil
}

func (f *rawFile) ReadNative1(addr ir.Addr) (uint8, error) {
	if err := f.bounds(addr, 1); err != nil {
		return 0, err
	}
	return f.data[addr], nil
}

func (f *rawFile) ReadNative2(addr ir.Addr) (uint16, error) {
	if err := f.bounds(addr, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(f.data[addr:]), nil
}

func (f *rawFile) ReadNative4(addr ir.Addr) (uint32, error) {
	if err := f.bounds(addr, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(f.data[addr:]), nil
}

func (f *rawFile) ReadNative8(addr ir.Addr) (uint64, error) {
	if err := f.bounds(addr, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(f.data[addr:]), nil
}

func (f *rawFile) ReadNativeFloat4(addr ir.Addr) (float32, error) {
	v, err := f.ReadNative4(addr)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (f *rawFile) ReadNativeFloat8(addr ir.Addr) (float64, error) {
	v, err := f.ReadNative8(addr)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}
