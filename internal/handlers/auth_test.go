package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/setline/setline/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTokenFromCookie(t *testing.T) {
	assert.Equal(t, "abc123", extractTokenFromCookie("auth_token=abc123"))
	assert.Equal(t, "abc123", extractTokenFromCookie("other=x; auth_token=abc123; more=y"))
	assert.Equal(t, "", extractTokenFromCookie("other=x"))
	assert.Equal(t, "", extractTokenFromCookie(""))
}

func TestAuthenticateRequest(t *testing.T) {
	auth.Init() // ephemeral keys, no DB needed

	userID := uuid.New()
	token, err := auth.CreateJWT(userID.String())
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/match/ws/"+uuid.NewString(), nil)
	req.Header.Set("Cookie", "auth_token="+token)

	got, err := authenticateRequest(req)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestAuthenticateRequestRejectsMissingOrBadToken(t *testing.T) {
	auth.Init()

	req := httptest.NewRequest("GET", "/match/state/"+uuid.NewString(), nil)
	_, err := authenticateRequest(req)
	assert.Error(t, err, "missing cookie must be rejected")

	req.Header.Set("Cookie", "auth_token=not-a-jwt")
	_, err = authenticateRequest(req)
	assert.Error(t, err)
}
