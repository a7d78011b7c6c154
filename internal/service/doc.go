// Package service owns the live school store.
//
// SchoolService is the only way callers reach the engine. It opens the store
// from its snapshot, serializes access with a read/write lock, saves a new
// snapshot after every successful mutation and publishes an Event for it.
//
// Calls made before Open or after Close fail with domain.ErrNotInitialized.
// A mutation whose snapshot could not be saved is still applied in memory;
// the call then returns an error wrapping domain.ErrNotPersisted.
package service
