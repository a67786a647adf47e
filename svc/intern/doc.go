// Package intern stores intern records for the letter workflow.
//
// Three Store implementations share the same validation and timestamp
// rules: MemoryStore for development and tests, SQLStore over postgres or
// sqlite (schema in internal/db) and MongoStore. Records are always scoped to
// an owner id taken from the verified bearer token.
package intern
