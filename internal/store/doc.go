// Package store implements spec.md §4.1 over SQLite: claims, edges,
// the append-only proof log, and the active pointer, each write
// transactional and foreign-key-checked.
package store
