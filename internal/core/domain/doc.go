// Package domain defines the core business entities for Alcove.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: A canonical imported item from a data source
//   - RawItem: A source-native item produced by a plugin before normalisation
//   - Credential: OAuth token material for an authenticated plugin
//   - ImportRun: One logged ingestion execution for one plugin
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
