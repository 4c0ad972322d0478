package idhash

import "github.com/google/uuid"

// runNamespace scopes run IDs to this application.
var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("strategy-validator/run"))

// ComputeRunID derives a name-based (version 5) UUID from a cache key, so
// identical inputs always report the same run ID.
func ComputeRunID(cacheKey string) string {
	return uuid.NewSHA1(runNamespace, []byte(cacheKey)).String()
}
