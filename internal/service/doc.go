// Package service orchestrates the pure domain rules with persistence.
//
// Each service loads what a rule needs, applies it, and writes the result in
// a single transaction. Clock and id generation are injected so that the
// domain packages never read the wall clock themselves.
package service
