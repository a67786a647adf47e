// Package redis connects to Redis with go-redis and exposes a readiness
// check. The send guard uses it to debounce concurrent letter dispatch
// across service instances.
package redis
