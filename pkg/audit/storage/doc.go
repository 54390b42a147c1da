// Package storage provides audit record persistence backends: SQLite
// for durable evidence and an in-memory store for tests and
// development.
package storage
