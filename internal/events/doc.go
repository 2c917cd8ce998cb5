// Package events carries notable domain occurrences, such as a re-added term
// or a completed sync import, from the services that cause them to the
// handlers that record them.
//
// Services emit through the EventEmitter interface and never learn which
// handlers are registered. StoreRecorder is the handler that writes the
// audit trail through store.EventStore.
package events
