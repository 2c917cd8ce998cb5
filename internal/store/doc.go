// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing the scheduling and merge rules
// to remain independent of specific database technologies.
//
// Every store exposes WithTx so that services can compose several
// operations into one transaction via RunInTransaction.
package store
