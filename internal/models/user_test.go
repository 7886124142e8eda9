package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_Defaults(t *testing.T) {
	u := NewUser("alice", "alice@example.com", "$2a$10$hash")

	assert.NotEqual(t, uuid.Nil, u.UID)
	assert.Equal(t, RoleUser, u.Role)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsVerified)
	assert.False(t, u.IsSuperuser)
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
	assert.Equal(t, "<User alice>", u.String())
}

func TestUser_JSONHidesPassword(t *testing.T) {
	body, err := json.Marshal(NewUser("bob", "bob@example.com", "secret-hash"))
	require.NoError(t, err)

	assert.NotContains(t, string(body), "secret-hash")
	assert.Contains(t, string(body), `"role":"user"`)
	assert.Contains(t, string(body), `"first_name":null`)
}

func TestParseUserRole(t *testing.T) {
	r, err := ParseUserRole("moderator")
	require.NoError(t, err)
	assert.Equal(t, RoleModerator, r)

	_, err = ParseUserRole("root")
	assert.Error(t, err)
}
