// Package kvstore exposes the short-lived key/value records the quiz flow
// depends on: question-set blobs and per-user temporary score counters.
// The handler itself is stateless, so this store plus the callback token are
// the only carriers of session state between invocations.
package kvstore

import (
	"context"
	"errors"
)

// ErrUnavailable signals a transport-level store failure. Callers do not
// retry; the dispatch boundary converts it into a plain acknowledgment.
var ErrUnavailable = errors.New("kvstore: unavailable")

// Store is the minimal adapter contract used by the quiz flow.
// Read-after-write consistency for the same key is assumed; it is what makes
// the score tally correct within one session.
type Store interface {
	// Get returns the value for key and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Put writes value under key, overwriting any previous value.
	Put(ctx context.Context, key, value string) error
}

// QuizKey addresses a question-set blob for a catalog key.
func QuizKey(catalogKey string) string {
	return "quiz_" + catalogKey
}

// TallyKey addresses the running score counter of one user.
func TallyKey(userID int64) string {
	return "temp_score_" + formatID(userID)
}
