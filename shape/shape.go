// Package shape wires per-endpoint tag tables into root assemblers and binds
// the delivered products to exported structs. Only a representative subset
// of each endpoint's shards is covered here; callers needing more can
// register additional tags on the returned assembler before feeding it.
package shape

import (
	json "github.com/goccy/go-json"

	"github.com/statecraft/nswire/assembly"
)

// toField arms the assembler's field target when the tag opens.
func toField(field string, conv ...assembly.Converter) assembly.TagHandler {
	return func(a *assembly.Assembler, _ map[string]string) {
		a.Build(field, conv...)
	}
}

// bind maps a delivered composite product onto a typed struct via a JSON
// round-trip. Products are plain maps with scalar leaves, so this stays
// cheap and keeps the field tables free of per-struct copy code.
func bind[T any](v any) (*T, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}
