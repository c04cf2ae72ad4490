package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func TestManager_RequireValid(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	identify := func(r *http.Request) (uuid.UUID, string, error) {
		cred := r.Header.Get("Authorization")
		if cred == "" {
			return uuid.Nil, "", errors.New("missing credential")
		}
		return userID, cred, nil
	}

	newRequest := func(credential string) *http.Request {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("User-Agent", testClient.Agent)
		r.RemoteAddr = testClient.Address + ":51000"
		if credential != "" {
			r.Header.Set("Authorization", credential)
		}
		return r
	}

	t.Run("passes a validated request through", func(t *testing.T) {
		f := setupManager(t)
		_, err := f.manager.Create(ctx, userID, testClient, session.Credentials{Access: "tok"}, 0)
		require.NoError(t, err)

		var gotUserID uuid.UUID
		handler := f.manager.RequireValid(identify)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID, _ = session.UserIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("tok"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID, gotUserID)
	})

	t.Run("rejects a request without a credential", func(t *testing.T) {
		f := setupManager(t)

		handler := f.manager.RequireValid(identify)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest(""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an unknown credential", func(t *testing.T) {
		f := setupManager(t, session.WithRecovery(false))

		handler := f.manager.RequireValid(identify)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("tok-unknown"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
