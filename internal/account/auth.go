package account

import (
	"context"

	"github.com/dmitrijs2005/soraprompter/internal/cryptox"
	"github.com/dmitrijs2005/soraprompter/internal/models"
)

// Register creates a FREE account with the signup credits. A non-empty
// inviteCode that matches an existing user's code rewards that user; an
// unknown code is ignored. Registration does not open a session.
func (e *engine) Register(ctx context.Context, username string, password []byte, inviteCode string) (models.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	today := e.today()
	var secret string

	var res models.Result
	var referrer string

	err := e.store.UpdateDirectory(ctx, func(dir models.Directory) (bool, error) {
		referrer = ""
		if _, taken := dir[username]; taken {
			res = models.Result{Code: models.CodeDuplicateUsername, Message: "username already exists"}
			return false, nil
		}

		code, err := e.uniqueInviteCode(dir)
		if err != nil {
			return false, err
		}

		// hashed once, only for names that are free; retries reuse it
		if secret == "" {
			secret = e.hashSecret(password)
		}

		u := &models.User{
			Username:       username,
			PasswordSecret: secret,
			InviteCode:     code,
			Credits:        SignupCredits,
			Membership:     models.MembershipFree,
			LastLoginDate:  today,
		}

		if ref := dir.FindByInviteCode(inviteCode); ref != nil {
			ref.Credits += ReferralReward
			u.InvitedBy = ref.Username
			referrer = ref.Username
		}

		dir[username] = u
		res = models.Result{Success: true, Code: models.CodeOK, Message: "registered, please log in"}
		return true, nil
	})
	if err != nil {
		e.logger.Error(ctx, "register failed", "username", username, "error", err)
		return models.Result{}, err
	}

	e.logger.Info(ctx, "register", "username", username, "success", res.Success, "referrer", referrer)
	return res, nil
}

// Login verifies the password and opens a session. The first login of a
// calendar day grants the daily bonus; lastLoginDate records that day.
func (e *engine) Login(ctx context.Context, username string, password []byte) (models.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	today := e.today()

	var res models.Result
	err := e.store.UpdateDirectory(ctx, func(dir models.Directory) (bool, error) {
		u, ok := dir[username]
		if !ok {
			// unknown names pay for a hash too, so timing does not tell them apart
			e.verifySecret(cryptox.Decoy(e.params), password)
		}
		if !ok || !e.verifySecret(u.PasswordSecret, password) {
			res = models.Result{Code: models.CodeBadCredentials, Message: "wrong username or password"}
			return false, nil
		}

		if u.LastLoginDate == today {
			res = models.Result{Success: true, Code: models.CodeOK, Message: "logged in"}
			return false, nil
		}

		u.Credits += DailyBonus
		u.LastLoginDate = today
		res = models.Result{Success: true, Code: models.CodeBonusGranted, Message: "welcome back! daily bonus of 3 credits added"}
		return true, nil
	})
	if err != nil {
		e.logger.Error(ctx, "login failed", "username", username, "error", err)
		return models.Result{}, err
	}

	if !res.Success {
		e.logger.Info(ctx, "login rejected", "username", username)
		return res, nil
	}

	if err := e.store.SetCurrentUser(ctx, username); err != nil {
		e.logger.Error(ctx, "open session failed", "username", username, "error", err)
		return models.Result{}, err
	}

	e.logger.Info(ctx, "login", "username", username, "bonus", res.Code == models.CodeBonusGranted)
	return res, nil
}

// Logout clears the session marker.
func (e *engine) Logout(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.SetCurrentUser(ctx, ""); err != nil {
		return err
	}
	e.logger.Info(ctx, "logout")
	return nil
}

// CurrentUser returns the session owner or nil when nobody is logged in.
func (e *engine) CurrentUser(ctx context.Context) (*models.User, error) {
	u, err := e.store.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return u.Clone(), nil
}
