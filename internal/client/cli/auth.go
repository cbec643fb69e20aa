package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/postbox/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a user name and the password twice and creates the
// account. It does not log in.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return a.report(err)
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	password2, err := getPassword("Repeat password", a.out)
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password2)

	if err := a.client.Register(ctx, userName, string(password), string(password2)); err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "User %s registered, you can log in now\n", userName)
	return nil
}

// Login prompts for credentials and obtains a token pair.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return a.report(err)
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	if err := a.client.Login(ctx, userName, string(password)); err != nil {
		return a.report(err)
	}

	a.userName = userName
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.client.Logout()
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
