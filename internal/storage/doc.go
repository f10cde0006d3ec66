// Package storage provides key-value backends for persisting widget state.
//
// Every backend implements the same small contract: Get returns the value
// stored under a key (and whether it exists), Set replaces it. Writes are
// synchronous, so a Get after a successful Set observes the new value.
//
// Backends:
//   - Memory: process-local map, used in tests and when persistence is off
//   - File: one file per key in a directory, replaced atomically
//   - SQLite: a single kv table in a SQLite database
package storage
