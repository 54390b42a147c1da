// Package tenant resolves and models tenant identity for enforcement.
//
// A Context is created once per request by the Resolver from verified
// principal claims (bearer token looked up in the Registry) and/or the
// X-Tenant-Id header, and is immutable afterward. In prod a tenant is never
// synthesized from unauthenticated client-supplied fields alone; non-prod
// environments may fall back to a header-only tenant or a configured default,
// both logged.
package tenant
