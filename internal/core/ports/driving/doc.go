// Package driving defines the interfaces through which external actors
// (CLI, scheduler, chat collaborator) drive the core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// Core services implement them; driving adapters call them.
package driving
