package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billed/session"
)

func TestMemStorage(t *testing.T) {
	s := session.NewMemStorage()

	_, ok := s.GetItem("user")
	assert.False(t, ok)

	s.SetItem("user", `{"email":"a@test.tld"}`)
	value, ok := s.GetItem("user")
	assert.True(t, ok)
	assert.Equal(t, `{"email":"a@test.tld"}`, value)

	s.SetItem("user", `{"email":"b@test.tld"}`)
	value, _ = s.GetItem("user")
	assert.Contains(t, value, "b@test.tld")
}

func TestCurrentUser(t *testing.T) {
	s := session.NewMemStorage()

	// Empty session.
	_, err := session.CurrentUser(s)
	assert.Error(t, err)

	// Round trip through StoreUser.
	require.NoError(t, session.StoreUser(s, session.User{Email: "employee@test.tld", Type: "Employee"}))
	u, err := session.CurrentUser(s)
	require.NoError(t, err)
	assert.Equal(t, "employee@test.tld", u.Email)
	assert.Equal(t, "Employee", u.Type)
}

func TestCurrentUser_Malformed(t *testing.T) {
	s := session.NewMemStorage()

	s.SetItem("user", "not-json")
	_, err := session.CurrentUser(s)
	assert.Error(t, err)

	s.SetItem("user", `{"type":"Employee"}`)
	_, err = session.CurrentUser(s)
	assert.Error(t, err, "a user record without email is rejected")
}
