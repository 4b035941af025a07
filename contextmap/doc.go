// Package contextmap maintains a partial bijection between links and values
// that changes over time and can be queried as of any past context.
//
// A context is whatever the embedding program uses as "when": a logical
// clock, a timestamp, a sequence number. Any totally ordered type works.
//
// # Model
//
// Every link that has ever held a value owns a Registry: an append-only,
// context-ordered chain of Records. A Record with no value is a null record
// and marks that the link held nothing from that context on. The same
// Registry is indexed twice while it is live, once under its link and once
// under its current value, so both directions resolve with one lookup.
//
// At any context:
//   - a link is associated with at most one value,
//   - a value is associated with at most one link.
//
// # Writing
//
// Insert decides the effect of a (context, link, value) triple on both
// indices before touching either of them. The link side may create a
// registry (NewLink), extend it (Update) or fill a null record at the same
// context (Overwrite). The value side may repoint the value from another
// link's registry, appending a null record to that registry
// (NullifyAndRepoint). Writes never move a registry backwards in time, and
// a rejected write leaves the map exactly as it was.
//
// # Reading
//
// Query answers "what did link L hold as of context C". LiveValue and
// LiveLink answer the same question for the latest state, one per
// direction. History and Snapshot expose whole chains and whole states.
//
// ContextMap is not safe for concurrent use. See package effects/index for
// a handler that owns maps and serializes access to them.
//
// Example:
//
//	m := contextmap.New[string, int, int]()
//	m.Insert(0, "a", 10) // NewLink
//	m.Insert(1, "b", 20) // NewLink
//	m.Insert(2, "b", 10) // NullifyAndRepoint: 10 moves from "a" to "b"
//
//	rec, _ := m.Query(1, "a") // Record { 10 @ 1 }
//	rec, _ = m.Query(2, "a")  // Record { <none> @ 2 }
package contextmap
