// Package app wires Boardwalk together.
//
// Run is the composition root: it loads configuration and preferences,
// opens the credential keychain and the SQLite state cache, builds the
// API client and the state store, and hands everything to the UI. The
// dependencies flow one way:
//
//	config/prefs/auth -> remote.Client -> state.Store -> ui
//
// Nothing below app imports app, and nothing reads configuration
// ambiently; every component receives what it needs through its
// options struct.
//
// A background refresher re-fetches the active board on an interval so
// edits made from other clients eventually appear. It reuses the same
// store operations the UI calls, so refresh results merge under the
// same rules as everything else.
package app
