// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package, together with the
// embedded goose migrations that create their tables.
//
// Meanings, tags and review results are stored as JSONB; the scheduling state
// of an item is spread over plain columns so due-date queries can use an index.
package postgres
