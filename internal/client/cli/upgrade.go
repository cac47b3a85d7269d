package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/soraprompter/internal/account"
	"github.com/dmitrijs2005/soraprompter/internal/models"
)

// Upgrade buys a membership tier for the session owner after the user
// confirms the payment.
func (a *App) Upgrade(ctx context.Context, tierName string) error {
	var (
		tier  models.Membership
		offer string
	)
	switch strings.ToLower(tierName) {
	case "vip":
		tier = models.MembershipVIP
		offer = fmt.Sprintf("VIP, unlimited generations for %d days, $%s", int(account.VIPDuration.Hours()/24), account.VIPPrice)
	case "svip":
		tier = models.MembershipSVIP
		offer = fmt.Sprintf("SVIP, lifetime unlimited generations, $%s", account.SVIPPrice)
	default:
		fmt.Fprintln(a.out, "Usage: upgrade vip|svip")
		return nil
	}

	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first.")
		return nil
	}

	ok, err := confirm(a.reader, "Confirm payment: "+offer+"?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Payment cancelled.")
		return nil
	}

	if err := a.accounts.UpgradeMembership(ctx, tier); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Payment successful! You are now %s.\n", tier)
	return a.Status(ctx)
}
