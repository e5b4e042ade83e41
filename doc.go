package nswire

// Package nswire is a streaming client for the NationStates-style read API.
//
// - Responses are assembled into values while they download, through the
//   event-driven engine in the assembly package; no document is ever
//   buffered into a generic tree first.
// - Requests are paced by a shared token-window limiter (ratelimit package)
//   and identified by a mandatory descriptive user agent.
// - Typed endpoint bindings live in the shape package; custom shapes plug in
//   by wiring their own root assembler.
//
// Design policy:
// - Keep the public client surface in the root package; the engine, reader,
//   limiter and shapes live in focused subpackages.
// - The engine never performs I/O and fails whole documents rather than
//   salvaging partial products.
//
// Typical usage:
//
//	c, err := nswire.New("Example/1.0 (ops@example.org)")
//	n, err := c.Nation(ctx, "Testlandia")
//	fmt.Println(n.FullName)
