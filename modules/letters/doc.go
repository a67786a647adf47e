// Package letters is the JSON API for managing interns and their offer and
// completion letters. Routes are relative; mount the router under /api.
//
// Every route except /health needs an owner on the request context, set by
// AuthMiddleware from a bearer token or by StaticOwner for local runs.
// Errors use the handler envelope: validation 422, unknown intern 404,
// duplicate email or in-flight send 409, unconfigured channel 503 and channel
// or transport failures 502. Failed sends keep the dispatch result in data.
package letters
