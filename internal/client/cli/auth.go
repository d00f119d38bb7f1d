package cli

import (
	"context"
	"fmt"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, username, and password and creates an account.
// A successful registration also opens the session.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	u, err := a.session.Register(ctx, email, password, username)
	if err != nil {
		printlnFn("Registration failed:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Registration successful! Welcome, %s.", u.DisplayName()))
	return nil
}

// Login prompts for credentials and authenticates against the backend. On
// success the realtime feed is up and the wallet is scoped to the user.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	u, err := a.session.Login(ctx, email, password)
	if err != nil {
		printlnFn("Login failed:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Login successful! Welcome back, %s.", u.DisplayName()))
	return nil
}

// Logout ends the session and drops all session-scoped state, including the
// wallet balance and the unlock registry.
func (a *App) Logout(ctx context.Context) error {
	err := a.session.Logout(ctx)
	a.hasOpen = false
	printlnFn("Logged out.")
	return err
}
