// Package bridge maps Indigo devices onto accessory-framework services.
//
// # Architecture
//
//	framework get/set -> Adapter -> indigo.Client -> Indigo server
//	Indigo server -> push listener -> Adapter.Reconcile -> framework update
//
// The Registry discovers devices over the Indigo REST API, filters and
// classifies them, and owns one Adapter per qualifying device in an
// identifier-keyed lookup table.
//
// Each Adapter is tagged with exactly one capability Variant chosen at
// construction time. The variant selects which traits the accessory exposes
// and which value-translation rules apply; it never changes afterwards.
// Variants are plain data (a per-variant table of trait sets and per-field
// mirror functions) rather than a type hierarchy, so near-identical device
// shapes (door, window, window covering) share one implementation.
//
// # Echo suppression
//
// Every internal write path carries an Origin. User-origin writes go out to
// the Indigo server through the serialized request queue. Mirror-origin
// writes exist only to reflect server-confirmed or server-pushed state into
// the framework; they never reach the outbound queue. Without this split, a
// push notification would trigger a write, which would trigger another
// notification, looping forever against the server.
//
// # Property cache
//
// Each adapter holds the last-known-good snapshot of its device's known
// property fields. The snapshot is replaced wholesale on every successful
// status fetch and left untouched by a failed one; it is never partially
// updated. Reconcile diffs the new snapshot against the old one field by
// field and mirrors only what changed.
package bridge
