package frontend

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/mod/semver"

	"decomp/internal/errs"
)

// PluginEntry statically registers one per-format loader plugin: a magic
// predicate over the file's leading bytes, a constructor, and the minimum
// core version the plugin declares itself compatible with. There is no
// dynamic loading: just an ordered table consulted in registration order.
type PluginEntry struct {
	Name           string
	MinCoreVersion string // semver, e.g. "v1.0.0"
	Detect         func(header []byte) bool
	Open           func(path string, data []byte) (BinaryFile, error)
}

var registry []PluginEntry

// RegisterPlugin appends entry to the static dispatch table. Called from
// each format file's init(); a plugin whose MinCoreVersion is not a valid
// semver string is rejected immediately, since CoreVersion comparisons
// against it would be meaningless.
func RegisterPlugin(entry PluginEntry) {
	if !semver.IsValid(entry.MinCoreVersion) {
		panic(fmt.Sprintf("frontend: plugin %q declares invalid semver %q", entry.Name, entry.MinCoreVersion))
	}
	registry = append(registry, entry)
}

// headerSize covers every magic fingerprint this package detects: Mach-O
// and Palm offsets only need the first 0x40 bytes.
const headerSize = 0x40

// Detect identifies which registered plugin, if any, claims path's magic
// bytes, skipping any plugin whose declared MinCoreVersion exceeds
// coreVersion. An unrecognized magic, or a magic recognized only by a
// plugin too new for this core build, is a hard error.
func Detect(path string, coreVersion string) (*PluginEntry, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errs.IO(path, err)
	}
	header := data
	if len(header) > headerSize {
		header = header[:headerSize]
	}
	var tooNew *PluginEntry
	for i := range registry {
		e := &registry[i]
		if !e.Detect(header) {
			continue
		}
		if semver.Compare(coreVersion, e.MinCoreVersion) < 0 {
			if tooNew == nil {
				tooNew = e
			}
			continue
		}
		return e, data, nil
	}
	if tooNew != nil {
		return nil, nil, errs.Load(path, "plugin %q requires core >= %s, have %s", tooNew.Name, tooNew.MinCoreVersion, coreVersion)
	}
	return nil, nil, errs.Load(path, "unrecognized binary magic")
}

// Open detects and constructs the BinaryFile for path in one step.
func Open(path string, coreVersion string) (BinaryFile, error) {
	entry, data, err := Detect(path, coreVersion)
	if err != nil {
		return nil, err
	}
	bf, err := entry.Open(path, data)
	if err != nil {
		return nil, errs.Load(path, "%s plugin: %v", entry.Name, err)
	}
	return bf, nil
}

func hasPrefix(data, prefix []byte) bool { return bytes.HasPrefix(data, prefix) }
