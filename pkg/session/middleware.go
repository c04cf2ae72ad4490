package session

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionkit/pkg/clientip"
)

// IdentityFunc extracts the authenticated principal and its presented
// credential from a request. It runs after upstream cryptographic
// verification (e.g. token signature checks); this subsystem only decides
// whether a live session record backs the credential.
type IdentityFunc func(r *http.Request) (userID uuid.UUID, accessCredential string, err error)

// RequireValid is middleware that rejects requests whose credential is not
// backed by a live session. All failures, including store errors, surface
// as a bare 401: callers cannot tell "expired" from "never existed", and a
// store outage fails closed.
func (m *Manager) RequireValid(identify IdentityFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, credential, err := identify(r)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			client := Client{
				Agent:   r.UserAgent(),
				Address: clientip.GetIP(r),
			}

			ok, err := m.Validate(r.Context(), userID, client, credential)
			if err != nil || !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
