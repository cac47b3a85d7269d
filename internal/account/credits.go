package account

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/soraprompter/internal/common"
	"github.com/dmitrijs2005/soraprompter/internal/models"
)

// DeductCredit is the gate in front of every billable generation. SVIP and
// active VIP users pass without spending credits; anybody else spends one
// credit if they have any. It returns false without a session or when the
// credits are exhausted, and never mutates anything in those cases.
func (e *engine) DeductCredit(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	username, err := e.sessionUser(ctx, "deduct_credit")
	if err != nil || username == "" {
		return false, err
	}

	now := e.clock.Now()
	allowed, charged := false, false

	err = e.store.UpdateDirectory(ctx, func(dir models.Directory) (bool, error) {
		allowed, charged = false, false
		u, ok := dir[username]
		if !ok {
			return false, nil
		}
		if u.HasUnlimitedUse(now) {
			allowed = true
			return false, nil
		}
		if u.Credits <= 0 {
			return false, nil
		}
		u.Credits--
		u.UsageCount++
		allowed, charged = true, true
		return true, nil
	})
	if err != nil {
		e.logger.Error(ctx, "deduct credit failed", "username", username, "error", err)
		return false, err
	}

	e.logger.Debug(ctx, "deduct credit", "username", username, "allowed", allowed, "charged", charged)
	return allowed, nil
}

// UpgradeMembership records a confirmed purchase of tier for the session
// owner. VIP time stacks on top of any remaining VIP time; SVIP is
// permanent and clears the expiry. Payment is assumed to be verified by the
// caller. Without a session it does nothing.
func (e *engine) UpgradeMembership(ctx context.Context, tier models.Membership) error {
	if tier != models.MembershipVIP && tier != models.MembershipSVIP {
		return fmt.Errorf("%w: %q", common.ErrInvalidMembership, string(tier))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	username, err := e.sessionUser(ctx, "upgrade_membership")
	if err != nil || username == "" {
		return err
	}

	now := e.clock.Now()

	err = e.store.UpdateDirectory(ctx, func(dir models.Directory) (bool, error) {
		u, ok := dir[username]
		if !ok {
			return false, nil
		}

		switch tier {
		case models.MembershipVIP:
			u.TotalSpent += VIPPrice
			if u.Membership == models.MembershipSVIP {
				// SVIP already covers everything VIP would.
				return true, nil
			}
			base := now
			if u.Membership == models.MembershipVIP && u.MembershipExpiry != nil && u.MembershipExpiry.After(now) {
				base = *u.MembershipExpiry
			}
			expiry := base.Add(VIPDuration)
			u.Membership = models.MembershipVIP
			u.MembershipExpiry = &expiry
		case models.MembershipSVIP:
			u.TotalSpent += SVIPPrice
			u.Membership = models.MembershipSVIP
			u.MembershipExpiry = nil
		}
		return true, nil
	})
	if err != nil {
		e.logger.Error(ctx, "upgrade failed", "username", username, "tier", tier, "error", err)
		return err
	}

	e.logger.Info(ctx, "upgrade", "username", username, "tier", tier)
	return nil
}
