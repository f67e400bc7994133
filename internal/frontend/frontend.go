// Package frontend defines the minimal interfaces the core consumes from
// its binary-loader and instruction-decoder collaborators: per-format
// loader plugins and per-architecture decoders are external components,
// but the core still needs a stable contract to call them through. Format
// discovery is a statically-registered magic-byte dispatch table rather
// than dynamic plugin loading, each entry tagged with a minimum-core-version
// string checked with golang.org/x/mod/semver.
package frontend

import "decomp/internal/ir"

// SectionInfo describes one named region of a loaded binary.
type SectionInfo struct {
	Name       string
	StartAddr  ir.Addr
	Length     uint64
	Executable bool
}

// BinaryFile is the minimal capability required of a loaded binary,
// regardless of its on-disk format.
type BinaryFile interface {
	Machine() string
	MainEntryPoint() ir.Addr
	SectionInfoByName(name string) (SectionInfo, bool)
	IsDynamicLinkedProc(addr ir.Addr) bool
	DynamicProcName(addr ir.Addr) (string, bool)
	ReadNative1(addr ir.Addr) (uint8, error)
	ReadNative2(addr ir.Addr) (uint16, error)
	ReadNative4(addr ir.Addr) (uint32, error)
	ReadNative8(addr ir.Addr) (uint64, error)
	ReadNativeFloat4(addr ir.Addr) (float32, error)
	ReadNativeFloat8(addr ir.Addr) (float64, error)
	Symbols() map[ir.Addr]string
	DependencyList() []string
}

// DecodeResult is one decoded instruction: its RTL, how many bytes it
// occupied, whether the decoder wants the caller to retry decoding at the
// same address with different context (reDecode -- e.g. after resolving a
// prefix), and whether decoding succeeded at all.
type DecodeResult struct {
	RTL      *ir.RTL
	NumBytes int
	ReDecode bool
	Valid    bool
}

// Decoder is the minimal capability consumed from an architecture-specific
// instruction decoder.
type Decoder interface {
	DecodeInstruction(pc ir.Addr, delta int64) (DecodeResult, error)
	DecodeAssemblyInstruction(pc ir.Addr, delta int64) (string, int, error)
}

// RestoreChecker is optionally implemented by a Decoder that can recognize
// a procedure-epilogue "restore" instruction.
type RestoreChecker interface {
	IsRestore(addr ir.Addr) bool
}
