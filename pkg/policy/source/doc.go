// Package source owns the active policy snapshot. The snapshot is an
// immutable *ast.Policy swapped atomically on reload, so concurrent
// evaluations never observe a half-applied rule set. A file watcher
// (fsnotify, debounced) reloads the snapshot when the policy file
// changes on disk; reloads with a non-increasing version are rejected.
package source
