// Package optimize coordinates the scanner's performance primitives behind a
// thin facade.
//
// The primary type is Coordinator. It owns one connection pool registry, one
// batch runner, and an optional query cache, and exposes named feature flags
// plus a typed configuration map to turn the primitives on and off at
// runtime. Unknown flag or config names and wrongly typed values are rejected
// by return value, never by panic, and never partially applied.
//
//	c := optimize.NewCoordinator()
//	c.EnableAll()
//	provider := c.Provider() // pooled or direct, per current flags
//
// Snapshot accessors (Flags, Config, Stats) return copies safe to hand to a
// CLI or reporting layer.
package optimize
