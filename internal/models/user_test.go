package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_HasUnlimitedUse(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		u    User
		want bool
	}{
		{"free", User{Membership: MembershipFree}, false},
		{"free with stale expiry", User{Membership: MembershipFree, MembershipExpiry: &future}, false},
		{"svip", User{Membership: MembershipSVIP}, true},
		{"vip active", User{Membership: MembershipVIP, MembershipExpiry: &future}, true},
		{"vip expired", User{Membership: MembershipVIP, MembershipExpiry: &past}, false},
		{"vip expiring now", User{Membership: MembershipVIP, MembershipExpiry: &now}, false},
		{"vip without expiry", User{Membership: MembershipVIP}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.u.HasUnlimitedUse(now))
		})
	}
}

func TestUser_CanGenerate(t *testing.T) {
	now := time.Now()
	assert.True(t, (&User{Membership: MembershipFree, Credits: 1}).CanGenerate(now))
	assert.False(t, (&User{Membership: MembershipFree}).CanGenerate(now))
	assert.True(t, (&User{Membership: MembershipSVIP}).CanGenerate(now))
}

func TestUser_Clone(t *testing.T) {
	exp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	u := &User{Username: "alice", MembershipExpiry: &exp}

	c := u.Clone()
	require.Equal(t, u, c)

	*c.MembershipExpiry = exp.Add(time.Hour)
	c.Username = "bob"
	assert.Equal(t, exp, *u.MembershipExpiry)
	assert.Equal(t, "alice", u.Username)

	assert.Nil(t, (*User)(nil).Clone())
}

func TestMembership_Valid(t *testing.T) {
	assert.True(t, MembershipFree.Valid())
	assert.True(t, MembershipVIP.Valid())
	assert.True(t, MembershipSVIP.Valid())
	assert.False(t, Membership("GOLD").Valid())
	assert.False(t, Membership("").Valid())
}

func TestDirectory_FindByInviteCode(t *testing.T) {
	d := Directory{
		"alice": {Username: "alice", InviteCode: "ABC123"},
		"bob":   {Username: "bob", InviteCode: "XYZ789"},
	}

	assert.Equal(t, "bob", d.FindByInviteCode("XYZ789").Username)
	assert.Nil(t, d.FindByInviteCode("abc123"), "codes are case-sensitive")
	assert.Nil(t, d.FindByInviteCode(""))
	assert.True(t, d.HasInviteCode("ABC123"))
	assert.False(t, d.HasInviteCode("NOPE00"))
}

func TestUser_JSONFieldNames(t *testing.T) {
	exp := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	u := User{
		Username:         "alice",
		PasswordSecret:   "secret",
		InviteCode:       "ABC123",
		Credits:          5,
		Membership:       MembershipVIP,
		MembershipExpiry: &exp,
		LastLoginDate:    "2025-05-10",
		TotalSpent:       690,
		UsageCount:       2,
	}

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"username": "alice",
		"passwordSecret": "secret",
		"inviteCode": "ABC123",
		"credits": 5,
		"membership": "VIP",
		"membershipExpiry": "2025-06-01T00:00:00Z",
		"lastLoginDate": "2025-05-10",
		"totalSpent": 6.90,
		"usageCount": 2
	}`, string(b))

	var free User
	require.NoError(t, json.Unmarshal([]byte(`{"username":"bob","membership":"FREE","totalSpent":0}`), &free))
	assert.Nil(t, free.MembershipExpiry)
	assert.Empty(t, free.InvitedBy)
}
