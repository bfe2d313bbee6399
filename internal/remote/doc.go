// Package remote provides the HTTP client for the board service API.
//
// # Overview
//
// This package is the only place in Boardwalk that speaks the board
// service's wire protocol. Every response is normalized here (envelope
// unwrapping, error classification, id verification) so the state store
// never branches on response shape.
//
// # Envelope Normalization
//
// The service wraps every JSON payload in a common envelope:
//
//	{"status": 1, "message": "...", "data": ...}
//
// A 2xx response with status != 1 is still a failure. The client unwraps
// the envelope and hands callers only the data payload, decoded into the
// typed structs in types.go.
//
// # Error Classification
//
// Expected failures come back as *Error with a Kind:
//
//   - KindAuth: missing credential (no request issued) or HTTP 401
//   - KindNetwork: the request never completed
//   - KindServer: the server reported a failure (non-2xx, or status != 1)
//   - KindProtocol: the response is structurally wrong: a non-JSON body,
//     an undecodable payload, or an echoed id that does not match the
//     request (RenameList, UpdateCard)
//
// Context cancellation passes through untouched so callers can use
// errors.Is(err, context.Canceled) to discard stale fetches.
//
// # Authentication
//
// Every request carries "Authorization: Bearer <token>" supplied by a
// TokenSource. An empty token fails fast with KindAuth before any network
// traffic, which lets the UI redirect to login without a round-trip.
//
// # Endpoints
//
//   - GET    /api/boards, /api/workspaces[/{id}]
//   - POST   /api/boards, /api/workspaces
//   - GET    /api/lists/{boardId}           (empty array is a valid result)
//   - POST   /api/lists
//   - PUT    /api/lists/{id}?name=...       (verifies the echoed id)
//   - GET    /api/cards/{listId}
//   - POST   /api/cards
//   - PUT    /api/cards/{id}, /api/cards/{id}/move
//   - GET/POST/PUT/DELETE /api/comments[/{id}]
//   - GET/POST/DELETE     /api/attachments[/{id}]  (POST is multipart)
//
// # Design Rationale
//
// The client is stateless and safe for concurrent use. It performs no
// caching, no retries, and no optimistic bookkeeping; those concerns
// belong to the state store, which owns the board tree.
package remote
