package assembly

// Package assembly is the event-driven object-assembly engine behind nswire.
//
// An Assembler receives a push-based sequence of open/close/text events from
// a streaming markup reader and builds one finished value ("product") without
// buffering the document. Each recognized tag either fills a field of the
// product, possibly through a Converter, or spawns a delegated child
// Assembler that owns the nested subtree until its closing tag.
//
// Design policy:
// - The engine performs no I/O and never blocks; it is driven synchronously
//   by whoever owns the byte stream (see the sax package).
// - Assembler state is a single tagged mode (collecting, delegating,
//   ignoring, finalized) so that illegal combinations cannot be represented.
// - Tag handlers are per-instance configuration, never global registries.
//
// Typical usage:
//
//	a := assembly.New()
//	a.OnTag("NAME", func(a *assembly.Assembler, _ map[string]string) {
//		a.Build("name")
//	})
//	err := sax.Stream(body, a)
//	v, err := a.Deliver()
