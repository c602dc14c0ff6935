// Package submit turns a user's rating of a book into a ratings store upsert.
package submit

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/lepinkainen/bookdash/internal/ratings"
)

// User ids are drawn from this inclusive range.
const (
	MinUserID = 100000
	MaxUserID = 999999
)

// Result reports the outcome of a submission.
type Result struct {
	ratings.UpsertResult
	UserID int
}

// IdentityFunc returns the user id a submission is recorded under.
type IdentityFunc func() int

// RandomIdentity draws a fresh id for every submission. Ids are not unique
// across sessions, so two users can collide and overwrite each other.
func RandomIdentity() int {
	return MinUserID + rand.IntN(MaxUserID-MinUserID+1)
}

// FixedIdentity always returns userID.
func FixedIdentity(userID int) IdentityFunc {
	return func() int { return userID }
}

// Flow validates ratings and writes them to a ratings store.
type Flow struct {
	store    ratings.Store
	identity IdentityFunc
}

// NewFlow creates a submission flow. A nil identity uses RandomIdentity.
func NewFlow(store ratings.Store, identity IdentityFunc) *Flow {
	if identity == nil {
		identity = RandomIdentity
	}
	return &Flow{store: store, identity: identity}
}

// Submit records value as the current user's rating of bookIndex. The value
// must be a whole number from 1 to 5; anything else is a ValidationError and
// the store is not touched.
//
// The book index is not checked against the catalog. A rating for an unknown
// book is stored but never appears in the joined view.
func (f *Flow) Submit(ctx context.Context, bookIndex int, value float64) (Result, error) {
	s := submission{BookIndex: bookIndex, Value: value, UserID: f.identity()}
	if err := validateSubmission(s); err != nil {
		return Result{}, err
	}

	upsert, err := f.store.Upsert(ctx, s.UserID, s.BookIndex, s.Value)
	if err != nil {
		return Result{}, fmt.Errorf("failed to save rating: %w", err)
	}

	slog.Info("Rating submitted", "book_index", bookIndex, "rating", value, "user_id", s.UserID, "created", upsert.Created)
	return Result{UpsertResult: upsert, UserID: s.UserID}, nil
}
