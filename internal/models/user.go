// Package models defines the account records persisted by the store and the
// values exchanged between the engine and the CLI.
package models

import "time"

// Membership is a user's paid tier.
type Membership string

const (
	MembershipFree Membership = "FREE"
	MembershipVIP  Membership = "VIP"
	MembershipSVIP Membership = "SVIP"
)

// Valid reports whether m is one of the known tiers.
func (m Membership) Valid() bool {
	switch m {
	case MembershipFree, MembershipVIP, MembershipSVIP:
		return true
	}
	return false
}

// User is one registered account. It is stored as a JSON object inside the
// directory blob.
type User struct {
	Username         string     `json:"username"`
	PasswordSecret   string     `json:"passwordSecret"`
	InviteCode       string     `json:"inviteCode"`
	InvitedBy        string     `json:"invitedBy,omitempty"`
	Credits          int        `json:"credits"`
	Membership       Membership `json:"membership"`
	MembershipExpiry *time.Time `json:"membershipExpiry,omitempty"`
	LastLoginDate    string     `json:"lastLoginDate"`
	TotalSpent       Money      `json:"totalSpent"`
	UsageCount       int        `json:"usageCount"`
}

// HasUnlimitedUse reports whether the membership currently waives credit
// consumption. The expiry is only consulted for VIP.
func (u *User) HasUnlimitedUse(now time.Time) bool {
	switch u.Membership {
	case MembershipSVIP:
		return true
	case MembershipVIP:
		return u.MembershipExpiry != nil && u.MembershipExpiry.After(now)
	}
	return false
}

// CanGenerate reports whether a billable generation may start.
func (u *User) CanGenerate(now time.Time) bool {
	return u.HasUnlimitedUse(now) || u.Credits > 0
}

// Clone returns a deep copy, so callers can hand out users without sharing
// the directory's records.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.MembershipExpiry != nil {
		t := *u.MembershipExpiry
		c.MembershipExpiry = &t
	}
	return &c
}

// Directory maps usernames to users.
type Directory map[string]*User

// HasInviteCode reports whether any user holds code.
func (d Directory) HasInviteCode(code string) bool {
	return d.FindByInviteCode(code) != nil
}

// FindByInviteCode returns the user holding code, or nil. Matching is exact.
func (d Directory) FindByInviteCode(code string) *User {
	if code == "" {
		return nil
	}
	for _, u := range d {
		if u.InviteCode == code {
			return u
		}
	}
	return nil
}
