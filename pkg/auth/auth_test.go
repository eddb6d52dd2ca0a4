package auth

import (
	"net/http"
	"net/http/httptest"
	"staydesk/pkg/logger"
	"staydesk/pkg/model"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier(testSecret, "staydesk")
	token, err := v.Issue(model.Caller{ID: "user-1", Role: model.RoleStaff}, time.Hour)
	require.NoError(t, err)

	caller, err := v.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, model.Caller{ID: "user-1", Role: model.RoleStaff}, caller)
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier(testSecret, "staydesk")

	expired, err := v.Issue(model.Caller{ID: "user-1", Role: model.RoleCustomer}, -time.Minute)
	require.NoError(t, err)

	otherKey, err := NewVerifier("another-secret-value", "staydesk").Issue(model.Caller{ID: "user-1", Role: model.RoleCustomer}, time.Hour)
	require.NoError(t, err)

	badRole, err := v.Issue(model.Caller{ID: "user-1", Role: "owner"}, time.Hour)
	require.NoError(t, err)

	noSubject, err := v.Issue(model.Caller{Role: model.RoleCustomer}, time.Hour)
	require.NoError(t, err)

	wrongIssuer, err := NewVerifier(testSecret, "elsewhere").Issue(model.Caller{ID: "user-1", Role: model.RoleCustomer}, time.Hour)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"wrong key":    otherKey,
		"unknown role": badRole,
		"no subject":   noSubject,
		"wrong issuer": wrongIssuer,
		"alg none":     noneAlg,
		"garbage":      "not.a.token",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Parse(token)
			assert.Error(t, err)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	v := NewVerifier(testSecret, "")
	valid, err := v.Issue(model.Caller{ID: "user-9", Role: model.RoleCustomer}, time.Hour)
	require.NoError(t, err)

	var seen model.Caller
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CallerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticate(v, logger.Discard())(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCaller model.Caller
	}{
		{"anonymous", "", http.StatusOK, model.Caller{}},
		{"valid token", "Bearer " + valid, http.StatusOK, model.Caller{ID: "user-9", Role: model.RoleCustomer}},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, model.Caller{}},
		{"bad token", "Bearer nope", http.StatusUnauthorized, model.Caller{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = model.Caller{}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCaller, seen)
		})
	}
}

func TestCallerKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5123"
	assert.Equal(t, "addr:10.0.0.7", CallerKeyExtractor(req))

	req = req.WithContext(WithCaller(req.Context(), model.Caller{ID: "user-3", Role: model.RoleCustomer}))
	assert.Equal(t, "caller:user-3", CallerKeyExtractor(req))
}
