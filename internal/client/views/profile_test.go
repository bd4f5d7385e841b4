package views

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/milktracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassicProfile_Membership(t *testing.T) {
	h := newHarness(t, "n", "y")
	v := &classicProfile{d: h.deps}

	out := render(t, v)
	assert.Contains(t, out, "Membership: Free")
	assert.Contains(t, out, "free, annual, lifetime")

	assert.Contains(t, run(t, v, "membership", "gold"), "Invalid membership type. Must be one of: free, annual, lifetime")

	// declined confirmation changes nothing
	assert.Empty(t, run(t, v, "membership", "annual"))
	assert.Empty(t, h.sess.calls)

	assert.Contains(t, run(t, v, "membership", "Annual"), "Membership successfully updated to annual")
	assert.Equal(t, []string{"membership annual"}, h.sess.calls)
}

func TestClassicProfile_MembershipFailure(t *testing.T) {
	h := newHarness(t, "y")
	h.sess.fail = true
	h.sess.err = "Failed to update membership"
	assert.Contains(t, run(t, &classicProfile{d: h.deps}, "membership", "lifetime"), "Error: Failed to update membership")
}

func TestCompactProfile_EditFields(t *testing.T) {
	h := newHarness(t, "annie", "", "s3cret")
	v := &compactProfile{d: h.deps}

	assert.Contains(t, run(t, v, "username"), "Username updated successfully")
	assert.Contains(t, run(t, v, "email"), "Please enter a new email")
	assert.Contains(t, run(t, v, "password"), "Password updated successfully")

	require.Len(t, h.sess.updates, 2)
	assert.Equal(t, models.ProfileUpdate{Username: ptr("annie")}, h.sess.updates[0])
	assert.Equal(t, models.ProfileUpdate{Password: ptr("s3cret")}, h.sess.updates[1])
	assert.Equal(t, []string{"New username", "New email", "New password"}, h.in.asked)
}

func TestCompactProfile_Upgrade(t *testing.T) {
	for _, m := range []models.MembershipType{models.MembershipLifetime, models.MembershipAnnual} {
		t.Run(string(m)+" cannot upgrade", func(t *testing.T) {
			h := newHarness(t)
			h.sess.user.MembershipType = m
			v := &compactProfile{d: h.deps}
			assert.False(t, hasCommand(v, "upgrade"))
			var buf bytes.Buffer
			require.NoError(t, v.upgrade(context.Background(), &buf, nil))
			assert.Contains(t, buf.String(), "Upgrade is not available for your membership")
			assert.Empty(t, h.sess.calls)
		})
	}

	h := newHarness(t)
	v := &compactProfile{d: h.deps}
	require.True(t, hasCommand(v, "upgrade"))
	assert.Contains(t, run(t, v, "upgrade"), "Membership successfully upgraded to Annual")
	assert.Equal(t, []string{"membership annual"}, h.sess.calls)
	assert.False(t, hasCommand(v, "upgrade"))
}

func TestCompactProfile_DeleteNeedsTwoSteps(t *testing.T) {
	h := newHarness(t)
	v := &compactProfile{d: h.deps}

	run(t, v, "delete")
	assert.Empty(t, h.sess.calls)
	assert.Contains(t, render(t, v), "Run 'delete' again")

	run(t, v, "cancel")
	assert.False(t, hasCommand(v, "cancel"))

	h.sess.fail = true
	run(t, v, "delete")
	assert.Contains(t, run(t, v, "delete"), "Failed to delete account")
	assert.NotNil(t, h.sess.user)
	assert.Empty(t, h.nav.paths)

	h.sess.fail = false
	run(t, v, "delete")
	run(t, v, "delete")
	assert.Nil(t, h.sess.user)
	assert.Equal(t, "/login", h.nav.last())
}
