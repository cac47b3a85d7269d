// Package account is the credit and membership accounting engine: sign-up
// with referral rewards, login with the daily bonus, credit deduction for
// billable generations and membership upgrades.
package account

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/soraprompter/internal/clock"
	"github.com/dmitrijs2005/soraprompter/internal/common"
	"github.com/dmitrijs2005/soraprompter/internal/cryptox"
	"github.com/dmitrijs2005/soraprompter/internal/logging"
	"github.com/dmitrijs2005/soraprompter/internal/models"
	"github.com/dmitrijs2005/soraprompter/internal/store"
)

const (
	SignupCredits  = 5
	ReferralReward = 3
	DailyBonus     = 3

	VIPDuration = 20 * 24 * time.Hour

	VIPPrice  models.Money = 690
	SVIPPrice models.Money = 2990

	inviteCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	inviteCodeLength   = 6
	inviteCodeAttempts = 16
)

// Service is the account engine as seen by the CLI and the generation flow.
//
// Expected rejections (taken username, wrong password, exhausted credits)
// are reported through Result values and booleans. Errors are reserved for
// storage failures and invalid arguments.
type Service interface {
	Register(ctx context.Context, username string, password []byte, inviteCode string) (models.Result, error)
	Login(ctx context.Context, username string, password []byte) (models.Result, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	DeductCredit(ctx context.Context) (bool, error)
	UpgradeMembership(ctx context.Context, tier models.Membership) error
}

type engine struct {
	// mu serializes read-modify-write cycles issued through this engine.
	mu sync.Mutex

	store  store.Store
	clock  clock.Clock
	loc    *time.Location
	logger logging.Logger

	params        cryptox.Params
	newInviteCode func() (string, error)
	hashSecret    func(password []byte) string
	verifySecret  func(secret string, password []byte) bool
}

// NewService builds the engine over st. Calendar days for the login bonus
// are resolved in loc (UTC when nil).
func NewService(st store.Store, clk clock.Clock, loc *time.Location, logger logging.Logger) Service {
	return newEngine(st, clk, loc, logger)
}

func newEngine(st store.Store, clk clock.Clock, loc *time.Location, logger logging.Logger) *engine {
	if clk == nil {
		clk = clock.Real{}
	}
	if loc == nil {
		loc = time.UTC
	}
	e := &engine{
		store:  st,
		clock:  clk,
		loc:    loc,
		logger: logger,
		params: cryptox.DefaultParams(),
		newInviteCode: func() (string, error) {
			return common.RandomString(inviteCodeAlphabet, inviteCodeLength)
		},
		verifySecret: cryptox.VerifyPassword,
	}
	e.hashSecret = func(password []byte) string {
		return cryptox.HashPasswordWith(password, e.params)
	}
	return e
}

func (e *engine) today() string {
	return clock.DayOf(e.clock.Now(), e.loc)
}

// uniqueInviteCode draws codes until one is not held by anybody in dir.
func (e *engine) uniqueInviteCode(dir models.Directory) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := e.newInviteCode()
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		if !dir.HasInviteCode(code) {
			return code, nil
		}
	}
	return "", common.ErrInviteCodeExhausted
}

// sessionUser resolves the session owner's name, or "" without a session.
func (e *engine) sessionUser(ctx context.Context, op string) (string, error) {
	u, err := e.store.GetCurrentUser(ctx)
	if err != nil {
		return "", err
	}
	if u == nil {
		e.logger.Warn(ctx, "no active session", "op", op)
		return "", nil
	}
	return u.Username, nil
}
