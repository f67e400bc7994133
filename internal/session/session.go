// Package session wires every collaborator package (frontend, cfg, proc,
// program, xmlio, cache, events) into one programmatic API: load(file),
// decode(), decompile(), save(root_dir), load_xml(root_file). It is the
// single place that owns the Program plus the session-scoped
// collaborators driving it.
package session

import (
	"io"
	"log"

	"decomp/internal/cache"
	"decomp/internal/errs"
	"decomp/internal/events"
	"decomp/internal/frontend"
	"decomp/internal/program"
	"decomp/internal/symtab"
	"decomp/internal/xmlio"
)

// CoreVersion is compared against every frontend.PluginEntry's declared
// MinCoreVersion.
const CoreVersion = "v1.0.0"

// Session is the verb surface a CLI or embedding program drives a
// decompilation run through: one Program plus the loader/decoder/cache/
// progress collaborators it needs. Construction is explicit (New plus
// functional options) rather than a global config singleton.
type Session struct {
	prog    *program.Program
	bin     frontend.BinaryFile
	decoder frontend.Decoder
	symbols *symtab.Table

	cacheStore *cache.Store
	hub        *events.Hub
	logger     *log.Logger
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithDecoder injects the architecture-specific instruction decoder; the
// core never chooses one itself, since decoders are external collaborators.
func WithDecoder(d frontend.Decoder) Option {
	return func(s *Session) { s.decoder = d }
}

// WithCache attaches a persistent analysis cache.
func WithCache(store *cache.Store) Option {
	return func(s *Session) { s.cacheStore = store }
}

// WithEventHub attaches a progress-event hub; when set, Decode, Decompile
// and GenerateCode each publish a procedure's status to it once they are
// done with that procedure.
func WithEventHub(hub *events.Hub) Option {
	return func(s *Session) { s.hub = hub }
}

// WithLogOutput directs diagnostic logging to w (discarded if nil).
func WithLogOutput(w io.Writer) Option {
	return func(s *Session) {
		if w == nil {
			w = io.Discard
		}
		s.logger = log.New(w, "session: ", log.LstdFlags)
	}
}

// New constructs an empty Session with no loaded Program.
func New(opts ...Option) *Session {
	s := &Session{symbols: symtab.New(), logger: log.New(io.Discard, "", 0)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Program returns the session's current Program, or nil if none has been
// loaded/created yet.
func (s *Session) Program() *program.Program { return s.prog }

// Load implements the "load(file)" verb: detects the binary's format via
// the static plugin registry, opens it, and seeds an empty Program named
// after the file plus a symbol table populated from the loader's
// getSymbols().
func (s *Session) Load(path string) error {
	bf, err := frontend.Open(path, CoreVersion)
	if err != nil {
		return err
	}
	s.bin = bf
	s.prog = program.New(path, path, "root")

	for addr, name := range bf.Symbols() {
		s.symbols.Add(addr, name)
	}
	s.logger.Printf("loaded %s: machine=%s entry=%s symbols=%d", path, bf.Machine(), bf.MainEntryPoint(), s.symbols.Len())
	return nil
}

// LoadXML implements the "load_xml(root_file)" verb: reconstructs a full
// Program from a previously saved cluster-file tree (package xmlio).
func (s *Session) LoadXML(rootFile string) error {
	r := xmlio.NewReader()
	p, err := r.ReadProgram(rootFile)
	if err != nil {
		return err
	}
	for _, w := range r.Warnings() {
		s.logger.Printf("xmlio warning: %s", w)
	}
	s.prog = p
	return nil
}

// Save implements the "save(root_dir)" verb: writes every cluster to its
// own file under rootDir (package xmlio).
func (s *Session) Save(rootDir string) (err error) {
	if s.prog == nil {
		return errs.Invariant("", "Save: no Program loaded")
	}
	w := xmlio.NewWriter(rootDir)
	defer func() {
		if cerr := w.CloseStreams(); err == nil {
			err = cerr
		}
	}()
	return w.WriteProgram(s.prog)
}

// Symbols returns the session's address<->name table.
func (s *Session) Symbols() *symtab.Table { return s.symbols }
