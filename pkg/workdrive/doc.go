// Package workdrive adapts filesystem-style storage operations to the Zoho
// WorkDrive REST API. A path is an opaque WorkDrive resource id; operations
// that create resources additionally accept the "parentID/name" convention,
// where the final segment names the new resource and everything before it is
// the parent id.
//
// Every operation performs a single authenticated exchange (or a small fixed
// sequence of them) against the remote API: no retries, no caching, and no
// state held between calls. A fresh access token is requested from the
// configured TokenProvider before each request.
package workdrive
