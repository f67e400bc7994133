package xmlio

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// elemWriter is a thin wrapper over encoding/xml's token-level Encoder that
// lets callers control attribute and child order explicitly: attributes
// first on the open tag, then typed children in a fixed order. Using the
// stdlib's token API rather than struct-tag Marshal keeps that ordering in
// our hands instead of a reflection-driven marshal's.
type elemWriter struct {
	enc *xml.Encoder
	cw  *countingWriter
	err error
}

func newElemWriter(w io.Writer) *elemWriter {
	cw := &countingWriter{w: w}
	return &elemWriter{enc: xml.NewEncoder(cw), cw: cw}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// xmlAttr aliases xml.Attr so callers building attribute lists elsewhere in
// the package (exp.go, stmt.go, ...) don't need their own encoding/xml
// import just for the slice element type.
type xmlAttr = xml.Attr

func a(key, val string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: key}, Value: val}
}

func itoa(n int) string       { return strconv.Itoa(n) }
func atoi(s string) int       { i, _ := strconv.Atoi(s); return i }
func u16(s string) uint16     { i, _ := strconv.ParseUint(s, 10, 16); return uint16(i) }
func u64(s string) uint64     { i, _ := strconv.ParseUint(s, 10, 64); return i }
func fmtAddr(n uint64) string { return fmt.Sprintf("0x%x", n) }
func parseAddr(s string) uint64 {
	var n uint64
	fmt.Sscanf(s, "0x%x", &n)
	return n
}

func (w *elemWriter) open(tag string) {
	w.openAttrs(tag)
}

func (w *elemWriter) openAttrs(tag string, attrList ...xml.Attr) {
	if w.err != nil {
		return
	}
	w.err = w.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: tag}, Attr: attrList})
}

func (w *elemWriter) close(tag string) {
	if w.err != nil {
		return
	}
	w.err = w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: tag}})
}

// leaf writes a childless element with the given attributes in one call.
func (w *elemWriter) leaf(tag string, attrList ...xml.Attr) {
	w.openAttrs(tag, attrList...)
	w.close(tag)
}

// flush finalizes the underlying encoder and returns any write error
// accumulated across calls (elemWriter fails fast: once w.err is set, every
// further call is a no-op so a caller doesn't need to check errors after
// every single element).
func (w *elemWriter) flush() error {
	if w.err != nil {
		return w.err
	}
	return w.enc.Flush()
}

// bytesWritten reports the total bytes flushed to the underlying stream,
// for the writer's per-file humanize.Bytes log line.
func (w *elemWriter) bytesWritten() int64 { return w.cw.n }
