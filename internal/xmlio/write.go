package xmlio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"

	"decomp/internal/errs"
	"decomp/internal/program"
)

// Writer persists a Program as one XML file per cluster. It holds every
// stream opened for the current save so a single open/CloseStreams pair
// brackets the whole operation: every stream closes on every exit path,
// success or error.
type Writer struct {
	rootDir string
	streams []*os.File
}

// NewWriter prepares a Writer that will save under rootDir.
func NewWriter(rootDir string) *Writer {
	return &Writer{rootDir: rootDir}
}

// openStream creates (or truncates) the file at path, recording it so
// CloseStreams can release it later regardless of how the save ends.
func (w *Writer) openStream(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errs.IO(path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errs.IO(path, err)
	}
	w.streams = append(w.streams, f)
	return f, nil
}

// CloseStreams releases every stream opened during the current save,
// collecting (but not stopping on) the first error encountered so every
// file descriptor is still given a chance to close.
func (w *Writer) CloseStreams() error {
	var first error
	for _, f := range w.streams {
		if err := f.Close(); err != nil && first == nil {
			first = errs.IO(f.Name(), err)
		}
	}
	w.streams = nil
	return first
}

// clusterFilePath derives the on-disk path for a cluster from its
// root-first path components: "<root>/<cluster-path>/<cluster-name>.xml",
// the containing directory named for the cluster's parent.
func clusterFilePath(rootDir string, parts []string) string {
	if len(parts) == 0 {
		return rootDir
	}
	dirParts := append([]string{rootDir}, parts[:len(parts)-1]...)
	dir := filepath.Join(dirParts...)
	return filepath.Join(dir, parts[len(parts)-1]+".xml")
}

// WriteProgram saves p under w.rootDir, one file per cluster, and always
// releases every stream it opened before returning -- success, a mid-save
// write failure, or a panic recovered higher up all take the same exit
// path through CloseStreams.
func (w *Writer) WriteProgram(p *program.Program) (err error) {
	defer func() {
		if cerr := w.CloseStreams(); err == nil {
			err = cerr
		}
	}()

	for _, c := range p.Clusters() {
		path := clusterFilePath(w.rootDir, c.Path(p))
		f, ferr := w.openStream(path)
		if ferr != nil {
			return ferr
		}
		ew := newElemWriter(f)
		isRoot := c.ID() == p.RootCluster
		if isRoot {
			ew.openAttrs("prog",
				append(clusterHeaderAttrs(c),
					a("path", p.Path),
					a("name", p.Name),
					a("inumberedproc", itoa(p.NumberedProcCounter())),
				)...)
			w.writeGlobals(ew, p)
		} else {
			ew.openAttrs("cluster", clusterHeaderAttrs(c)...)
		}
		writeClusterBody(ew, p, c)
		if isRoot {
			ew.close("prog")
		} else {
			ew.close("cluster")
		}
		if ferr := ew.flush(); ferr != nil {
			return errs.IO(path, ferr)
		}
		fmt.Fprintf(os.Stderr, "xmlio: wrote %s (%s)\n", path, humanize.Bytes(uint64(ew.bytesWritten())))
	}
	return nil
}

func (w *Writer) writeGlobals(ew *elemWriter, p *program.Program) {
	ew.open("globals")
	for _, name := range sortedGlobalNames(p) {
		writeGlobal(ew, p.Globals[name])
	}
	ew.close("globals")
}

// sortedGlobalNames returns Program.Globals' keys in a fixed order so the
// writer's output is reproducible across runs, since Globals is a map and
// Go map iteration order is not itself stable.
func sortedGlobalNames(p *program.Program) []string {
	names := make([]string, 0, len(p.Globals))
	for name := range p.Globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
