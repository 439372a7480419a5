// Package file provides a file-based configuration store using TOML format.
// Plugin options live under [plugins.<name>] tables and are exposed to the
// core as flat dot-notation keys.
package file
