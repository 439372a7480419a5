// Package plugins holds the data-source adapters and the support code
// they share: the credential bridge into the auth service, API rate
// limiting, and HTTP status classification into the domain error
// taxonomy. Each source lives in its own subpackage and registers an
// implementation of the driven.Plugin port.
package plugins
