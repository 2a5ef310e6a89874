// Package dispatch routes classified failures to registered handlers.
//
// A Dispatcher gives every fault one place to land: it records the
// occurrence in a bounded history, invokes the handler registered for the
// fault's kind and then every global handler, and emits a structured event
// at the level the failure's severity dictates. Handler panics are isolated
// and logged; one misbehaving handler never stops the rest.
package dispatch
