package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/milktracker/internal/models"
)

func renderAccount(w io.Writer, u *models.User) error {
	if u == nil {
		_, err := fmt.Fprintln(w, "Not signed in.")
		return err
	}
	_, err := fmt.Fprintf(w, "Username:   %s\nEmail:      %s\nMembership: %s\n",
		u.Username, u.Email, u.MembershipType.Title())
	return err
}

type classicProfile struct{ d Deps }

func (v *classicProfile) Title() string { return "Profile" }

func (v *classicProfile) Render(_ context.Context, w io.Writer) error {
	if err := renderAccount(w, v.d.Session.User()); err != nil {
		return err
	}
	names := make([]string, len(models.Memberships))
	for i, m := range models.Memberships {
		names[i] = string(m)
	}
	_, err := fmt.Fprintf(w, "\nAvailable plans: %s\n", strings.Join(names, ", "))
	return err
}

func (v *classicProfile) Commands() []Command {
	return []Command{
		{Name: "membership", Usage: "membership <free|annual|lifetime>", Help: "change your plan", Run: v.membership},
	}
}

func (v *classicProfile) membership(ctx context.Context, w io.Writer, args []string) error {
	if len(args) != 1 {
		fail(w, "Usage: membership <free|annual|lifetime>")
		return nil
	}
	m, err := models.ParseMembership(strings.ToLower(args[0]))
	if err != nil {
		fail(w, err.Error())
		return nil
	}

	yes, err := confirm(v.d.Prompt, fmt.Sprintf("Change membership to %s?", m.Title()))
	if err != nil || !yes {
		return err
	}
	if !v.d.Session.UpdateMembership(ctx, m) {
		fail(w, v.d.Session.Err())
		return nil
	}
	notice(w, "Membership successfully updated to %s", m)
	return nil
}

// compactProfile edits one field at a time and hosts account deletion.
type compactProfile struct {
	d             Deps
	deletePending bool
}

func (v *compactProfile) Title() string { return "Profile" }

func (v *compactProfile) Render(_ context.Context, w io.Writer) error {
	if err := renderAccount(w, v.d.Session.User()); err != nil {
		return err
	}
	if v.deletePending {
		_, err := fmt.Fprintln(w, "\nRun 'delete' again to permanently delete your account, or 'cancel'.")
		return err
	}
	return nil
}

func (v *compactProfile) Commands() []Command {
	cmds := []Command{
		{Name: "username", Help: "change your username", Run: v.editField("username")},
		{Name: "email", Help: "change your email", Run: v.editField("email")},
		{Name: "password", Help: "change your password", Run: v.editField("password")},
	}
	if UpgradeAvailable(v.d.Session.User()) {
		cmds = append(cmds, Command{Name: "upgrade", Help: "upgrade to the annual plan", Run: v.upgrade})
	}
	cmds = append(cmds, Command{Name: "delete", Help: "delete your account", Run: v.deleteAccount})
	if v.deletePending {
		cmds = append(cmds, Command{Name: "cancel", Help: "keep your account", Run: func(context.Context, io.Writer, []string) error {
			v.deletePending = false
			return nil
		}})
	}
	return cmds
}

// UpgradeAvailable reports whether u may upgrade to the annual plan.
func UpgradeAvailable(u *models.User) bool {
	if u == nil {
		return false
	}
	return u.MembershipType != models.MembershipLifetime && u.MembershipType != models.MembershipAnnual
}

func (v *compactProfile) editField(field string) func(context.Context, io.Writer, []string) error {
	return func(ctx context.Context, w io.Writer, _ []string) error {
		var (
			value string
			err   error
		)
		label := "New " + field
		if field == "password" {
			value, err = v.d.Prompt.Secret(label)
		} else {
			value, err = v.d.Prompt.Text(label)
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(value) == "" {
			fail(w, "Please enter a new "+field)
			return nil
		}

		var upd models.ProfileUpdate
		switch field {
		case "username":
			upd.Username = &value
		case "email":
			upd.Email = &value
		case "password":
			upd.Password = &value
		}
		if !v.d.Session.UpdateProfile(ctx, upd) {
			fail(w, v.d.Session.Err())
			return nil
		}
		notice(w, "%s updated successfully", strings.ToUpper(field[:1])+field[1:])
		return nil
	}
}

func (v *compactProfile) upgrade(ctx context.Context, w io.Writer, _ []string) error {
	if !UpgradeAvailable(v.d.Session.User()) {
		fail(w, "Upgrade is not available for your membership")
		return nil
	}
	if !v.d.Session.UpdateMembership(ctx, models.MembershipAnnual) {
		fail(w, "Failed to upgrade membership")
		return nil
	}
	notice(w, "Membership successfully upgraded to Annual")
	return nil
}

// deleteAccount needs two invocations. Success leaves the session and
// navigation to the store.
func (v *compactProfile) deleteAccount(ctx context.Context, w io.Writer, _ []string) error {
	if !v.deletePending {
		v.deletePending = true
		return nil
	}
	v.deletePending = false
	if !v.d.Session.DeleteAccount(ctx) {
		fail(w, "Failed to delete account")
	}
	return nil
}
