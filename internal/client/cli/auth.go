package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/soraprompter/internal/common"
	"github.com/dmitrijs2005/soraprompter/internal/models"
)

// Register prompts for a username, a password and an optional invite code
// and creates the account. It does not log in.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	if userName == "" {
		fmt.Fprintln(a.out, "Username must not be empty.")
		return nil
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	if len(password) == 0 {
		fmt.Fprintln(a.out, "Password must not be empty.")
		return nil
	}

	invite, err := getSimpleText(a.reader, "Invite code (optional, press Enter to skip)", a.out)
	if err != nil {
		return err
	}

	res, err := a.accounts.Register(ctx, userName, password, invite)
	if err != nil {
		return err
	}
	if !res.Success {
		fmt.Fprintf(a.out, "Registration failed: %s\n", res.Message)
		return nil
	}

	fmt.Fprintln(a.out, "Registration successful! Please log in.")
	return nil
}

// Login prompts for credentials and opens a session.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.accounts.Login(ctx, userName, password)
	if err != nil {
		return err
	}
	if !res.Success {
		fmt.Fprintf(a.out, "Login failed: %s\n", res.Message)
		return nil
	}

	a.userName = userName
	if res.Code == models.CodeBonusGranted {
		fmt.Fprintln(a.out, "Welcome back! Daily bonus: +3 credits.")
	} else {
		fmt.Fprintln(a.out, "Logged in.")
	}
	return nil
}

// Logout closes the session and leaves admin mode.
func (a *App) Logout(ctx context.Context) error {
	if err := a.accounts.Logout(ctx); err != nil {
		return err
	}
	a.userName = ""
	a.adminMode = false
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// Status prints the session owner's account.
func (a *App) Status(ctx context.Context) error {
	u, err := a.accounts.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		a.userName = ""
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	now := a.clock.Now()

	fmt.Fprintf(a.out, "User:        %s\n", u.Username)
	fmt.Fprintf(a.out, "Membership:  %s\n", u.Membership)
	if u.Membership == models.MembershipVIP && u.MembershipExpiry != nil {
		state := "active"
		if !u.MembershipExpiry.After(now) {
			state = "expired"
		}
		fmt.Fprintf(a.out, "VIP until:   %s (%s)\n", u.MembershipExpiry.In(a.loc).Format("2006-01-02 15:04"), state)
	}
	if u.HasUnlimitedUse(now) {
		fmt.Fprintln(a.out, "Credits:     unlimited")
	} else {
		fmt.Fprintf(a.out, "Credits:     %d\n", u.Credits)
	}
	fmt.Fprintf(a.out, "Invite code: %s\n", u.InviteCode)
	fmt.Fprintf(a.out, "Generations: %d\n", u.UsageCount)
	fmt.Fprintf(a.out, "Total spent: $%s\n", u.TotalSpent)
	return nil
}
