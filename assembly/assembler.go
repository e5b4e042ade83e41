package assembly

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultErrorTag is the tag name the remote API uses to report an
// application-level failure inside an otherwise well-formed document.
const DefaultErrorTag = "ERROR"

// ErrNotFinalized is returned by Deliver when the root tag of the document
// has not closed yet. A product is never observable in a half-built state.
var ErrNotFinalized = errors.New("assembly: product not finalized")

// APIError carries the text content of the remote API's error tag.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return "assembly: remote api error: " + e.Message }

// Converter transforms accumulated character data into the value committed
// to a field target. Converters run immediately before commit and must be
// pure.
type Converter func(text string) (any, error)

// TagHandler configures an Assembler when an open event for its registered
// tag arrives. Handlers typically call Build, Set or AssignDelegate.
type TagHandler func(a *Assembler, attrs map[string]string)

// Node is the closed set of event receivers an Assembler can delegate to:
// Assembler, ListAssembler and FilteredListAssembler. The event intakes
// report whether the event was meaningfully handled; callers that track
// several candidate root tags rely on that signal.
type Node interface {
	OnOpen(name string, attrs map[string]string) (bool, error)
	OnClose(name string) (bool, error)
	OnText(text string) (bool, error)
	OnCData(text string) (bool, error)
	OnParserError(err error) error
	Deliver() (any, error)

	done() bool
}

var (
	_ Node = (*Assembler)(nil)
	_ Node = (*ListAssembler)(nil)
	_ Node = (*FilteredListAssembler)(nil)
)

type mode int

const (
	modeCollecting mode = iota
	modeDelegating
	modeIgnoring
	modeFinalized
)

// Assembler incrementally builds one product from a stream of markup events.
// It is single-shot: once finalized (or failed) it accepts no further events.
// Assemblers are not safe for concurrent use; each in-flight document gets
// its own tree.
type Assembler struct {
	product any
	dirty   bool

	target    fieldPath
	hasTarget bool
	convert   Converter
	text      strings.Builder

	handlers map[string][]TagHandler

	st          mode
	delegate    Node
	ignored     string
	ignoreDepth int

	rootTag  string
	rootSeen bool

	errTag  string
	errText strings.Builder
	inErr   bool

	failure error

	// sink commits one finished value against the current field target.
	// List variants replace it to append instead of overwrite.
	sink func(v any) error
}

// New returns an Assembler with an empty composite product. Wire it with
// OnTag before feeding events.
func New() *Assembler {
	a := &Assembler{}
	a.init()
	return a
}

func (a *Assembler) init() {
	a.product = map[string]any{}
	a.convert = Identity
	a.handlers = map[string][]TagHandler{}
	a.errTag = DefaultErrorTag
	a.sink = a.place
}

// Root fixes the tag whose close event finalizes this Assembler. Without it
// the first tag ever opened is adopted as the root.
func (a *Assembler) Root(name string) *Assembler {
	if name == "" {
		panic("assembly.Root: empty tag name")
	}
	a.rootTag = name
	return a
}

// ErrorTag overrides the protocol error tag intercepted by this Assembler.
func (a *Assembler) ErrorTag(name string) *Assembler {
	if name == "" {
		panic("assembly.ErrorTag: empty tag name")
	}
	a.errTag = name
	return a
}

// Build begins targeting field for the next committed value. The field may
// be a dotted path ("vote.total.for"); intermediate composites are created
// on demand. An empty field replaces the whole product. The text buffer is
// reset and conv, when given, replaces the identity converter.
func (a *Assembler) Build(field string, conv ...Converter) *Assembler {
	c := Converter(Identity)
	if len(conv) > 0 {
		if conv[0] == nil {
			panic("assembly.Build: nil converter")
		}
		c = conv[0]
	}
	a.target = parsePath(field)
	a.hasTarget = true
	a.convert = c
	a.text.Reset()
	return a
}

// Set commits value to field immediately. String values pass through the
// converter, everything else is committed as-is. Set is configuration-time
// API; a conflicting path is a programmer error and panics.
func (a *Assembler) Set(field string, value any, conv ...Converter) *Assembler {
	a.Build(field, conv...)
	v := value
	if s, ok := value.(string); ok {
		converted, err := a.convert(s)
		if err != nil {
			panic(fmt.Sprintf("assembly.Set: convert %q: %v", field, err))
		}
		v = converted
	}
	if err := a.commit(v); err != nil {
		panic(fmt.Sprintf("assembly.Set: %v", err))
	}
	return a
}

// OnTag registers h to run whenever an open event for name arrives while
// this Assembler is neither delegating nor ignoring. Handlers for the same
// name run in registration order.
func (a *Assembler) OnTag(name string, h TagHandler) *Assembler {
	if name == "" {
		panic("assembly.OnTag: empty tag name")
	}
	if h == nil {
		panic("assembly.OnTag: nil handler")
	}
	a.handlers[name] = append(a.handlers[name], h)
	return a
}

// AssignDelegate installs child as the exclusive receiver of all further
// events until it finalizes, at which point its product is absorbed into the
// current field target.
func (a *Assembler) AssignDelegate(child Node) *Assembler {
	if child == nil {
		panic("assembly.AssignDelegate: nil child")
	}
	if a.st != modeCollecting {
		panic("assembly.AssignDelegate: assembler is not collecting")
	}
	a.delegate = child
	a.st = modeDelegating
	return a
}

// Deliver returns the finished product. It fails with ErrNotFinalized before
// the root tag has closed, and with the recorded failure after a protocol or
// stream error.
func (a *Assembler) Deliver() (any, error) {
	if a.failure != nil {
		return nil, a.failure
	}
	if a.st != modeFinalized {
		return nil, ErrNotFinalized
	}
	return a.product, nil
}

func (a *Assembler) done() bool { return a.st == modeFinalized }

// ---- event intake ----

// OnOpen routes a tag-open event. The protocol error tag is intercepted
// before any other logic, at any depth.
func (a *Assembler) OnOpen(name string, attrs map[string]string) (bool, error) {
	if a.failure != nil {
		return false, a.failure
	}
	if a.st == modeFinalized {
		return false, nil
	}
	if a.inErr {
		return true, nil
	}
	if name == a.errTag {
		a.inErr = true
		a.errText.Reset()
		return true, nil
	}
	if a.st == modeDelegating {
		return a.delegate.OnOpen(name, attrs)
	}
	if a.st == modeIgnoring {
		if name == a.ignored {
			a.ignoreDepth++
		}
		return false, nil
	}
	if hs, ok := a.handlers[name]; ok {
		for _, h := range hs {
			h(a, attrs)
		}
		if a.st != modeDelegating {
			// Every recognized open tag ends up owned by some assembler.
			// The no-op collector soaks up the tag's text so the parent can
			// absorb it into the target the handler armed.
			a.AssignDelegate(New())
		}
		// The delegate owns the subtree from its opening tag onward; seeing
		// the open event lets it adopt the tag as its root.
		if _, err := a.delegate.OnOpen(name, attrs); err != nil {
			a.failure = err
			return true, err
		}
		return true, nil
	}
	if !a.rootSeen && name == a.rootTag {
		a.rootSeen = true
		return true, nil
	}
	if !a.rootSeen && a.rootTag == "" {
		a.rootTag = name
		a.rootSeen = true
		return true, nil
	}
	a.st = modeIgnoring
	a.ignored = name
	a.ignoreDepth = 1
	return false, nil
}

// OnClose routes a tag-close event. Closing the root tag commits any pending
// text and finalizes the product.
func (a *Assembler) OnClose(name string) (bool, error) {
	if a.failure != nil {
		return false, a.failure
	}
	if a.st == modeFinalized {
		return false, nil
	}
	if a.inErr {
		if name != a.errTag {
			return true, nil
		}
		a.inErr = false
		err := &APIError{Message: strings.TrimSpace(a.errText.String())}
		a.failure = err
		return true, err
	}
	if a.st == modeDelegating {
		handled, err := a.delegate.OnClose(name)
		if err != nil {
			a.failure = err
			return handled, err
		}
		if a.delegate.done() {
			v, derr := a.delegate.Deliver()
			if derr != nil {
				a.failure = derr
				return true, derr
			}
			a.delegate = nil
			a.st = modeCollecting
			if aerr := a.absorb(v); aerr != nil {
				a.failure = aerr
				return true, aerr
			}
		}
		return handled, nil
	}
	if a.st == modeIgnoring {
		if name == a.ignored {
			a.ignoreDepth--
			if a.ignoreDepth == 0 {
				a.st = modeCollecting
				a.ignored = ""
			}
			return true, nil
		}
		return false, nil
	}
	if name == a.rootTag {
		if err := a.commitText(true); err != nil {
			a.failure = err
			return true, err
		}
		a.st = modeFinalized
		return true, nil
	}
	// Simple leaf tag with text content only.
	if err := a.commitText(false); err != nil {
		a.failure = err
		return true, err
	}
	return true, nil
}

// OnText accumulates character data for the current field target, or routes
// it to the delegate.
func (a *Assembler) OnText(text string) (bool, error) {
	if a.failure != nil {
		return false, a.failure
	}
	if a.st == modeFinalized {
		return false, nil
	}
	if a.inErr {
		a.errText.WriteString(text)
		return true, nil
	}
	if a.st == modeDelegating {
		return a.delegate.OnText(text)
	}
	if a.st == modeIgnoring {
		return false, nil
	}
	a.text.WriteString(text)
	return true, nil
}

// OnCData handles CDATA sections exactly like character data.
func (a *Assembler) OnCData(text string) (bool, error) { return a.OnText(text) }

// OnParserError records a terminal reader error. The in-flight document is
// failed permanently; there is no partial-result recovery.
func (a *Assembler) OnParserError(err error) error {
	if err == nil {
		return nil
	}
	if a.failure != nil {
		return a.failure
	}
	if a.st == modeDelegating {
		_ = a.delegate.OnParserError(err)
	}
	a.failure = fmt.Errorf("assembly: parser error: %w", err)
	return a.failure
}

// ---- commit plumbing ----

// place is the default sink: it writes v at the current target path inside
// the composite product, or replaces the product when the path is empty.
func (a *Assembler) place(v any) error {
	if len(a.target) == 0 {
		a.product = v
		a.dirty = true
		return nil
	}
	m, ok := a.product.(map[string]any)
	if !ok {
		return fmt.Errorf("assembly: field %s conflicts with non-composite product", a.target)
	}
	if err := a.target.set(m, v); err != nil {
		return err
	}
	a.dirty = true
	return nil
}

func (a *Assembler) commit(v any) error {
	err := a.sink(v)
	a.target = nil
	a.hasTarget = false
	a.convert = Identity
	a.text.Reset()
	return err
}

// commitText commits the accumulated text buffer to the armed target. On
// finalization of a still-virgin product the raw text becomes the product
// itself, which is how auto-installed no-op delegates return leaf text.
func (a *Assembler) commitText(finalizing bool) error {
	if a.hasTarget {
		v, err := a.convert(a.text.String())
		if err != nil {
			return fmt.Errorf("assembly: convert %s: %w", a.target, err)
		}
		return a.commit(v)
	}
	if finalizing && !a.dirty {
		text := a.text.String()
		if strings.TrimSpace(text) == "" {
			text = ""
		}
		a.product = text
		a.dirty = true
	}
	a.text.Reset()
	return nil
}

// absorb commits a finalized delegate's product into the current target.
// A pending converter still applies when the product is raw text. With no
// target armed (the handler only called Set, or nothing at all) the value
// has nowhere to go and is dropped; the parent's product stays intact.
func (a *Assembler) absorb(v any) error {
	if !a.hasTarget {
		return nil
	}
	if s, ok := v.(string); ok {
		converted, err := a.convert(s)
		if err != nil {
			return fmt.Errorf("assembly: convert %s: %w", a.target, err)
		}
		v = converted
	}
	return a.commit(v)
}
