// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Plugin: Fetches raw items from one data source
//   - PluginRegistry: Fixed registry of configured plugins
//   - RecordStore: Canonical record persistence
//   - ImportRunStore: Run log persistence
//   - CredentialStore: OAuth credential persistence
//   - ConfigStore: Application and per-plugin configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, imports
//     still persist records but semantic search is disabled.
//   - ChatService: Completion provider for the chat boundary.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or plugin package
package driven
