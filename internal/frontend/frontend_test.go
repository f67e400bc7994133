package frontend

import (
	"os"
	"testing"
)

func TestDetectUnknownMagicIsError(t *testing.T) {
	path := writeTempFile(t, []byte("not a binary"))
	if _, _, err := Detect(path, "v1.0.0"); err == nil {
		t.Fatal("expected an error for unrecognized magic")
	}
}

func TestDetectELF(t *testing.T) {
	data := makeMinimalELF64(0x401000)
	path := writeTempFile(t, data)

	entry, _, err := Detect(path, "v1.0.0")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if entry.Name != "elf" {
		t.Fatalf("Name = %q, want elf", entry.Name)
	}

	bf, err := Open(path, "v1.0.0")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if bf.MainEntryPoint() != 0x401000 {
		t.Errorf("MainEntryPoint = %#x, want 0x401000", bf.MainEntryPoint())
	}
	if bf.Machine() != "x86-64" {
		t.Errorf("Machine = %q, want x86-64", bf.Machine())
	}
}

func TestDetectRejectsNewerPlugin(t *testing.T) {
	RegisterPlugin(PluginEntry{
		Name:           "future-format",
		MinCoreVersion: "v9.9.9",
		Detect:         func(header []byte) bool { return hasPrefix(header, []byte{0xAB, 0xCD}) },
		Open:           func(string, []byte) (BinaryFile, error) { return nil, nil },
	})
	path := writeTempFile(t, []byte{0xAB, 0xCD, 0, 0})
	if _, _, err := Detect(path, "v1.0.0"); err == nil {
		t.Fatal("expected an error: plugin requires a newer core than provided")
	}
}

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "bin-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return f.Name()
}

// makeMinimalELF64 builds just enough of a little-endian ELF64 header and
// section-header table (with a valid, if empty, shstrtab) for openELF to
// parse without error.
func makeMinimalELF64(entry uint64) []byte {
	const ehsize = 64
	buf := make([]byte, ehsize)
	buf[0], buf[1], buf[2], buf[3] = 0x7f, 'E', 'L', 'F'
	buf[4] = 2 // ELFCLASS64
	buf[5] = 1 // little-endian
	putU16(buf[18:20], 0x3e) // EM_X86_64
	putU64(buf[24:32], entry)
	putU64(buf[40:48], 0) // shoff = 0 -> shnum 0 section table, still valid
	putU16(buf[58:60], 64)
	putU16(buf[60:62], 0)
	putU16(buf[62:64], 0)
	return buf
}

func putU16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
