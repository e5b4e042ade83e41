package assembly

// ListAssembler appends every committed value to an ordered collection
// instead of overwriting a scalar field. It is the unit for any repeating
// sibling tag. Deliver hands back the collection and re-arms the assembler,
// so one instance can run many cycles without re-registering handlers.
type ListAssembler struct {
	Assembler

	items  []any
	accept func(any) bool
}

func (l *ListAssembler) initList() {
	l.Assembler.init()
	l.sink = func(v any) error {
		if l.accept == nil || l.accept(v) {
			l.items = append(l.items, v)
		}
		l.dirty = true
		return nil
	}
}

// NewListAssembler collects the text content of every occurrence of tag as a
// scalar list item, converted by conv when given.
func NewListAssembler(tag string, conv ...Converter) *ListAssembler {
	l := &ListAssembler{}
	l.initList()
	l.collectScalar(tag, conv)
	return l
}

// ChildFactory builds a fresh assembler for one occurrence of a repeating
// composite tag, given the tag's attributes.
type ChildFactory func(attrs map[string]string) Node

// NewChildListAssembler delegates every occurrence of tag to a freshly
// constructed child assembler and collects the finished products in
// encounter order.
func NewChildListAssembler(tag string, factory ChildFactory) *ListAssembler {
	l := &ListAssembler{}
	l.initList()
	l.collectChild(tag, factory)
	return l
}

// Deliver returns the accumulated collection and clears it, resetting the
// assembler for a fresh cycle of sibling values.
func (l *ListAssembler) Deliver() (any, error) {
	if l.failure != nil {
		return nil, l.failure
	}
	if l.st != modeFinalized {
		return nil, ErrNotFinalized
	}
	out := l.items
	if out == nil {
		out = []any{}
	}
	l.items = nil
	l.st = modeCollecting
	l.rootSeen = false
	l.dirty = false
	return out, nil
}

func (a *Assembler) collectScalar(tag string, conv []Converter) {
	a.OnTag(tag, func(a *Assembler, _ map[string]string) {
		a.Build("", conv...)
	})
}

func (a *Assembler) collectChild(tag string, factory ChildFactory) {
	if factory == nil {
		panic("assembly: nil child factory")
	}
	a.OnTag(tag, func(a *Assembler, attrs map[string]string) {
		// Arm the pass-through target so the finished child is committed
		// rather than dropped as an untargeted value.
		a.Build("").AssignDelegate(factory(attrs))
	})
}

// FilteredListAssembler is a ListAssembler that evaluates a predicate
// against each completed candidate and discards rejects. It exists for bulk
// documents where only a small caller-specified subset is wanted and
// materializing the rest would be wasteful.
type FilteredListAssembler struct {
	ListAssembler
}

// NewFilteredListAssembler collects the text of every occurrence of tag,
// converted by conv when given, keeping only values pred accepts.
func NewFilteredListAssembler(tag string, pred func(any) bool, conv ...Converter) *FilteredListAssembler {
	if pred == nil {
		panic("assembly.NewFilteredListAssembler: nil predicate")
	}
	f := &FilteredListAssembler{}
	f.initList()
	f.accept = pred
	f.collectScalar(tag, conv)
	return f
}

// NewFilteredChildListAssembler delegates every occurrence of tag to a fresh
// child assembler and keeps only finished products pred accepts.
func NewFilteredChildListAssembler(tag string, factory ChildFactory, pred func(any) bool) *FilteredListAssembler {
	if pred == nil {
		panic("assembly.NewFilteredChildListAssembler: nil predicate")
	}
	f := &FilteredListAssembler{}
	f.initList()
	f.accept = pred
	f.collectChild(tag, factory)
	return f
}
