// Package state owns the canonical in-memory board tree and every
// mutation against it.
//
// # Overview
//
// The Store holds workspaces → boards → lists → cards plus the two
// active pointers, and is the single source of truth the UI renders
// from. All mutation flows through its operations; no other component
// splices list or card slices.
//
// # Optimistic Update Protocol
//
// Every list/card mutation is a command value with four parts:
//
//  1. validate: precondition check against the live tree; a failure is
//     a ValidationError or NotFoundError and nothing else happens
//  2. apply: the optimistic local mutation, visible to the UI at once
//  3. call: the remote round-trip, issued with the store unlocked
//  4. reconcile: server-confirmed ids and positions folded back in
//
// On a failed call the pre-mutation snapshot is restored and the error
// surfaces to the caller. Reconcile closures locate their entity by id
// and drop the confirmation when the entity has vanished; confirmations
// are matched by request identity, never "most recent call wins".
//
// Comments and attachments do not follow this protocol: they are direct
// round-trips applied only after confirmation, because silently losing
// one costs more than a moment of latency.
//
// # Identity
//
// Server ids are decimal strings; entities created optimistically carry
// a "local-" uuid until reconciliation replaces it. Operations that need
// a server round-trip reject provisional targets with a ValidationError
// instead of sending a client-generated id to the server.
//
// # Ordering
//
// Sibling lists and cards are kept sorted by their numeric Position,
// strictly increasing, with deliberate gaps (increment 1024) so an
// insertion between neighbors is a midpoint computation rather than a
// renumbering. When a gap is exhausted the destination list is
// renumbered once and the insertion retried.
//
// # Active Pointers
//
// "Active" board and workspace are ids, resolved against the collections
// at read time. No per-entity boolean flag exists, so two boards can
// never both claim to be active. A pointer that stops resolving is
// cleared or moved to the first member.
//
// # Persistence
//
// Every mutation schedules a debounced flush of the serialized tree into
// the injected KV store (key "boardState"). Rapid mutations coalesce;
// the persisted snapshot converges within the flush delay of the last
// mutation, and Close performs a final flush so confirmed state survives
// shutdown. Load restores the snapshot at startup and repairs ordering
// and dangling pointers before use.
//
// # Concurrency
//
// A single mutex serializes tree access. Network calls run with the
// store unlocked, so the UI can keep issuing local mutations while
// earlier calls are in flight. Snapshots are deep clones; holders are
// never affected by later mutations.
package state
