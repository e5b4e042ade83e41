package assembly

import (
	"fmt"
	"strings"
)

// fieldPath is an ordered list of path segments addressing a nested location
// inside a composite product. The empty path addresses the product itself.
type fieldPath []string

func parsePath(field string) fieldPath {
	if field == "" {
		return nil
	}
	return strings.Split(field, ".")
}

func (p fieldPath) String() string { return strings.Join(p, ".") }

// set writes v at p inside root, creating intermediate composites lazily.
// An intermediate segment already holding a non-composite value is a
// conflict, never a silent overwrite.
func (p fieldPath) set(root map[string]any, v any) error {
	m := root
	for i, seg := range p[:len(p)-1] {
		next, ok := m[seg]
		if !ok {
			child := map[string]any{}
			m[seg] = child
			m = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("assembly: segment %q of path %s holds a non-composite value", p[i], p)
		}
		m = child
	}
	m[p[len(p)-1]] = v
	return nil
}
