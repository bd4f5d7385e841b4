package views

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/milktracker/internal/client/router"
	"github.com/dmitrijs2005/milktracker/internal/models"
)

type loginView struct{ d Deps }

func (v *loginView) Title() string { return "Sign in" }

func (v *loginView) Render(_ context.Context, w io.Writer) error {
	_, err := fmt.Fprintln(w, "Sign in to track your herd's milk production.\nNo account yet? Use 'register'.")
	return err
}

func (v *loginView) Commands() []Command {
	return []Command{
		{Name: "login", Help: "sign in with email and password", Run: v.login},
		{Name: "register", Help: "create an account", Run: func(context.Context, io.Writer, []string) error {
			v.d.Nav.Navigate(router.RegisterPath)
			return nil
		}},
	}
}

func (v *loginView) login(ctx context.Context, w io.Writer, _ []string) error {
	email, err := v.d.Prompt.Text("Email")
	if err != nil {
		return err
	}
	password, err := v.d.Prompt.Secret("Password")
	if err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		fail(w, "Please enter both email and password")
		return nil
	}

	if !v.d.Session.Login(ctx, email, password) {
		failWith(w, "Failed to sign in", v.d.Session.Err())
		return nil
	}
	v.d.Nav.Navigate(router.DefaultPath)
	return nil
}

type registerView struct{ d Deps }

func (v *registerView) Title() string { return "Create an account" }

func (v *registerView) Render(_ context.Context, w io.Writer) error {
	_, err := fmt.Fprintln(w, "Register to start tracking. Already have an account? Use 'login'.")
	return err
}

func (v *registerView) Commands() []Command {
	return []Command{
		{Name: "register", Help: "create an account", Run: v.register},
		{Name: "login", Help: "go to sign in", Run: func(context.Context, io.Writer, []string) error {
			v.d.Nav.Navigate(router.LoginPath)
			return nil
		}},
	}
}

func (v *registerView) register(ctx context.Context, w io.Writer, _ []string) error {
	p := v.d.Prompt
	email, err := p.Text("Email")
	if err != nil {
		return err
	}
	username, err := p.Text("Username (optional, defaults to email)")
	if err != nil {
		return err
	}
	password, err := p.Secret("Password")
	if err != nil {
		return err
	}
	confirmation, err := p.Secret("Confirm password")
	if err != nil {
		return err
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" || confirmation == "" {
		fail(w, "Please fill out all fields")
		return nil
	}
	if password != confirmation {
		fail(w, "Passwords do not match")
		return nil
	}

	if !v.d.Session.Register(ctx, email, password, strings.TrimSpace(username)) {
		failWith(w, "Failed to create an account", v.d.Session.Err())
		return nil
	}
	v.d.Nav.Navigate(router.OnboardingPath)
	return nil
}

// onboardingView walks a new user through creating the first herd.
type onboardingView struct {
	d    Deps
	herd *models.Herd
}

func (v *onboardingView) Title() string { return "Welcome" }

func (v *onboardingView) Render(_ context.Context, w io.Writer) error {
	if v.herd == nil {
		_, err := fmt.Fprintln(w, "Step 1 of 2: set up your first herd. Use 'herd' to create it.")
		return err
	}
	_, err := fmt.Fprintf(w, "Step 2 of 2: herd %q with %d cows is ready. Use 'dashboard' to continue.\n",
		v.herd.Name, v.herd.CowCount)
	return err
}

func (v *onboardingView) Commands() []Command {
	toDashboard := Command{Name: "dashboard", Help: "go to the dashboard", Run: func(context.Context, io.Writer, []string) error {
		v.d.Nav.Navigate(router.DefaultPath)
		return nil
	}}
	if v.herd != nil {
		return []Command{toDashboard}
	}
	return []Command{
		{Name: "herd", Help: "create your first herd", Run: v.createHerd},
		toDashboard,
	}
}

func (v *onboardingView) createHerd(ctx context.Context, w io.Writer, _ []string) error {
	in, msg, err := promptHerd(v.d.Prompt, models.HerdInput{})
	if err != nil {
		return err
	}
	if msg != "" {
		fail(w, msg)
		return nil
	}

	h, err := v.d.API.CreateHerd(ctx, in)
	if err != nil {
		fail(w, "Failed to create herd")
		return nil
	}
	v.herd = h
	return nil
}

// promptHerd reads a herd form, offering cur as defaults. A non-empty msg
// is a validation failure.
func promptHerd(p Prompter, cur models.HerdInput) (in models.HerdInput, msg string, err error) {
	countDefault := ""
	if cur.Name != "" {
		countDefault = strconv.Itoa(cur.CowCount)
	}

	name, err := textOr(p, "Herd name", cur.Name)
	if err != nil {
		return in, "", err
	}
	count, err := textOr(p, "Number of cows", countDefault)
	if err != nil {
		return in, "", err
	}
	line1, err := textOr(p, "Location line 1 (optional)", deref(cur.LocationLine1))
	if err != nil {
		return in, "", err
	}
	line2, err := textOr(p, "Location line 2 (optional)", deref(cur.LocationLine2))
	if err != nil {
		return in, "", err
	}

	if name == "" || count == "" {
		return in, "Please fill out all fields", nil
	}
	n, err := strconv.Atoi(count)
	if err != nil {
		return in, "Please enter a valid number", nil
	}
	if n < 1 {
		return in, "Cow count must be greater than zero", nil
	}
	return models.HerdInput{
		Name:          name,
		CowCount:      n,
		LocationLine1: optional(line1),
		LocationLine2: optional(line2),
	}, "", nil
}
