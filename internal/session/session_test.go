package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

var admin = Identity{ApplicantID: "applicant-admin", Email: "admin@jobmate.test", Admin: true}

func TestIssueVerify(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	tok, err := iss.Issue(admin)
	require.NoError(t, err)

	got, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, admin, got)
}

func TestVerify_Rejects(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	tok, err := iss.Issue(admin)
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrUnauthenticated, "wrong secret")

	_, err = iss.Verify("")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = iss.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	expired := NewIssuer("s3cret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Issue(admin)
	require.NoError(t, err)
	_, err = iss.Verify(old)
	assert.ErrorIs(t, err, ErrUnauthenticated, "expired")
}

func TestRequireAdmin(t *testing.T) {
	_, err := RequireAdmin(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	user := NewContext(context.Background(), Identity{Email: "alice@example.com"})
	_, err = RequireAdmin(user)
	assert.ErrorIs(t, err, ErrForbidden)

	id, err := RequireAdmin(NewContext(context.Background(), admin))
	require.NoError(t, err)
	assert.True(t, id.Admin)
}

func TestMiddleware(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	tok, err := iss.Issue(admin)
	require.NoError(t, err)

	var seen *Identity
	h := iss.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := FromContext(r.Context()); ok {
			seen = &id
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		status int
		authed bool
	}{
		{"anonymous", "", http.StatusNoContent, false},
		{"valid", "Bearer " + tok, http.StatusNoContent, true},
		{"lowercase scheme", "bearer " + tok, http.StatusNoContent, true},
		{"garbage", "Bearer nope", http.StatusUnauthorized, false},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.authed, seen != nil)
		})
	}
}

func TestFromMetadata(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	tok, err := iss.Issue(admin)
	require.NoError(t, err)

	ctx, err := iss.FromMetadata(context.Background())
	require.NoError(t, err)
	_, ok := FromContext(ctx)
	assert.False(t, ok)

	md := metadata.Pairs("authorization", "Bearer "+tok)
	ctx, err = iss.FromMetadata(metadata.NewIncomingContext(context.Background(), md))
	require.NoError(t, err)
	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, admin.Email, id.Email)

	md = metadata.Pairs("authorization", "Bearer broken")
	_, err = iss.FromMetadata(metadata.NewIncomingContext(context.Background(), md))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
