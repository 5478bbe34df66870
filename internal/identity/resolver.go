package identity

import (
	"database/sql"

	apperrors "github.com/chanikarn/mealrecord/internal/errors"
	"github.com/chanikarn/mealrecord/internal/logging"
)

// Resolver determines the acting user's numeric id through a
// cached-value-then-lookup fallback chain.
type Resolver struct {
	state *State
	users *sql.DB
}

// NewResolver creates a Resolver over the device state and the user
// reference store.
func NewResolver(state *State, users *sql.DB) *Resolver {
	return &Resolver{state: state, users: users}
}

// ResolveUserID returns the acting user's id.
//
// The chain is ordered so the common path (id already cached) costs no store
// query: a cached positive id wins immediately; otherwise a cached email is
// matched exactly against the user store and the found id is cached
// write-through for future calls. Exhaustion yields NO_IDENTITY.
func (r *Resolver) ResolveUserID() (int64, error) {
	ident, err := r.state.Load()
	if err != nil {
		logging.Warn("failed to read identity state", map[string]interface{}{"error": err.Error()})
		ident.UserID = 0
		ident.Email = ""
	}

	if ident.UserID > 0 {
		return ident.UserID, nil
	}

	if ident.Email != "" {
		var id int64
		err := r.users.QueryRow("SELECT id FROM User WHERE email = ?", ident.Email).Scan(&id)
		switch {
		case err == sql.ErrNoRows:
			// fall through to NO_IDENTITY
		case err != nil:
			return 0, apperrors.Wrap(apperrors.ErrStorageUnavailable, "user lookup failed", err)
		default:
			if cacheErr := r.state.SetIdentity(id, ident.Email); cacheErr != nil {
				logging.Warn("failed to cache resolved user id",
					map[string]interface{}{"error": cacheErr.Error()})
			}
			return id, nil
		}
	}

	return 0, apperrors.New(apperrors.ErrNoIdentity, "no cached identity and no matching user")
}
