// Package memory provides in-memory implementations of the storage ports.
// Used by service tests and available as a throwaway backend; production
// deployments use the sqlite package.
package memory
