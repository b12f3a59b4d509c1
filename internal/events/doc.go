// Package events carries account lifecycle notifications between services
// and the components that react to them.
//
// Services emit an Event through an EventEmitter without knowing which
// handlers exist; the notifier registers itself as an EventHandler and turns
// the events into e-mail jobs.
package events
