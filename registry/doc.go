// Package registry stores the definitions of the HTTP endpoints to probe.
//
// An Endpoint is externally defined: a unique key, display metadata, an
// HTTP method and a URL template with optional placeholders. The probing
// core only reads the registry; create/update/delete exist for the admin
// surface. List returns endpoints in a stable definitional order, which is
// also the order cycles probe them in.
package registry
