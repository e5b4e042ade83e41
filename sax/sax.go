// Package sax adapts encoding/xml's pull-based token stream into the five
// push events the assembly engine consumes: open, close, text, cdata and a
// terminal parser error. It enforces optional depth and size caps while
// streaming, so oversized documents fail early instead of after download.
package sax

import (
	"encoding/xml"
	"errors"
	"io"
)

var (
	// ErrDepthExceeded reports markup nested deeper than Options.MaxDepth.
	ErrDepthExceeded = errors.New("sax: max element depth exceeded")
	// ErrSizeExceeded reports input larger than Options.MaxBytes.
	ErrSizeExceeded = errors.New("sax: max input size exceeded")
)

// Handler receives document events in strict document order. The boolean
// results are for callers that track how events were attributed; Stream
// itself only acts on the errors.
type Handler interface {
	OnOpen(name string, attrs map[string]string) (bool, error)
	OnClose(name string) (bool, error)
	OnText(text string) (bool, error)
	OnCData(text string) (bool, error)
	OnParserError(err error) error
}

// Options bundles streaming limits. Zero values disable enforcement.
type Options struct {
	MaxDepth int
	MaxBytes int64
}

// Stream reads markup tokens from r and pushes them into h until the input
// is exhausted or an event intake fails. Reader errors are routed through
// h.OnParserError so the handler fails its in-flight product, then returned.
//
// encoding/xml folds CDATA sections into character data, so Stream emits
// only text events; OnCData exists for callers with their own readers.
func Stream(r io.Reader, h Handler, opts ...Options) error {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.MaxBytes > 0 {
		r = &cappedReader{r: r, left: opt.MaxBytes}
	}
	dec := xml.NewDecoder(r)
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, ErrSizeExceeded) {
				err = ErrSizeExceeded
			}
			return h.OnParserError(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if opt.MaxDepth > 0 && depth > opt.MaxDepth {
				return h.OnParserError(ErrDepthExceeded)
			}
			attrs := make(map[string]string, len(t.Attr))
			for _, at := range t.Attr {
				attrs[at.Name.Local] = at.Value
			}
			if _, err := h.OnOpen(t.Name.Local, attrs); err != nil {
				return err
			}
		case xml.EndElement:
			depth--
			if _, err := h.OnClose(t.Name.Local); err != nil {
				return err
			}
		case xml.CharData:
			if _, err := h.OnText(string(t)); err != nil {
				return err
			}
		}
	}
}

// cappedReader fails once more than its budget has been read. A document of
// exactly MaxBytes still terminates cleanly: with the budget spent it probes
// the source and only reports overflow when more data actually exists.
type cappedReader struct {
	r    io.Reader
	left int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if c.left <= 0 {
		var probe [1]byte
		n, err := c.r.Read(probe[:])
		if n > 0 {
			return 0, ErrSizeExceeded
		}
		return 0, err
	}
	if int64(len(p)) > c.left {
		p = p[:c.left]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	return n, err
}
