// Package export produces audit evidence bundles for external
// compliance tooling: a JSONL records file paired with a manifest
// carrying its sha256 so consumers can verify integrity before
// ingesting.
package export
