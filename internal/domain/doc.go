// Package domain contains the core entities of the vocabulary trainer:
// vocabulary items with their scheduling state, the append-only review log,
// and the snapshot format exchanged between devices during sync.
//
// Everything in this package and its subpackages is pure. Identifiers and the
// current time are always supplied by the caller, so the same inputs always
// produce the same outputs.
package domain
