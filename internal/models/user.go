// Package models holds the entities and wire DTOs shared by the server and
// the CLI. JSON field names follow the REST surface.
package models

import (
	"fmt"
	"strings"
	"time"
)

type MembershipType string

const (
	MembershipFree     MembershipType = "free"
	MembershipAnnual   MembershipType = "annual"
	MembershipLifetime MembershipType = "lifetime"
)

// Memberships lists the valid tiers in display order.
var Memberships = []MembershipType{MembershipFree, MembershipAnnual, MembershipLifetime}

func ParseMembership(s string) (MembershipType, error) {
	for _, m := range Memberships {
		if string(m) == s {
			return m, nil
		}
	}
	names := make([]string, len(Memberships))
	for i, m := range Memberships {
		names[i] = string(m)
	}
	return "", fmt.Errorf("Invalid membership type. Must be one of: %s", strings.Join(names, ", "))
}

// Title renders the tier for display, e.g. "Annual".
func (m MembershipType) Title() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

type User struct {
	ID             int64          `json:"id"`
	Email          string         `json:"email"`
	Username       string         `json:"username"`
	MembershipType MembershipType `json:"membership_type"`
	IsActive       bool           `json:"is_active"`
	PasswordHash   string         `json:"-"`
	CreatedAt      time.Time      `json:"-"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// ProfileUpdate is a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Detail is the body of every error response and of a few plain
// acknowledgements (e.g. account deletion).
type Detail struct {
	Detail string `json:"detail"`
}
