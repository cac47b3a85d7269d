// Package admin implements the operator view: password gate and directory
// wide statistics.
package admin

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/soraprompter/internal/clock"
	"github.com/dmitrijs2005/soraprompter/internal/cryptox"
	"github.com/dmitrijs2005/soraprompter/internal/models"
	"github.com/dmitrijs2005/soraprompter/internal/store"
)

const TopUsersLimit = 10

type Service interface {
	// Enabled reports whether an admin password was configured.
	Enabled() bool
	Authenticate(password []byte) bool
	Stats(ctx context.Context) (*models.AdminStats, error)
}

type service struct {
	store  store.Store
	clock  clock.Clock
	loc    *time.Location
	secret string
}

// NewService hashes password once; an empty password disables admin access.
func NewService(st store.Store, clk clock.Clock, loc *time.Location, password []byte) Service {
	return newService(st, clk, loc, password, cryptox.HashPassword)
}

func newService(st store.Store, clk clock.Clock, loc *time.Location, password []byte, hash func([]byte) string) *service {
	if clk == nil {
		clk = clock.Real{}
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &service{store: st, clock: clk, loc: loc}
	if len(password) > 0 {
		s.secret = hash(password)
	}
	return s
}

func (s *service) Enabled() bool {
	return s.secret != ""
}

func (s *service) Authenticate(password []byte) bool {
	if !s.Enabled() {
		return false
	}
	return cryptox.VerifyPassword(s.secret, password)
}

func (s *service) Stats(ctx context.Context) (*models.AdminStats, error) {
	dir, err := s.store.LoadDirectory(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(dir, clock.DayOf(s.clock.Now(), s.loc)), nil
}

// Summarize computes the dashboard figures for dir, counting users whose
// last login falls on today as active.
func Summarize(dir models.Directory, today string) *models.AdminStats {
	st := &models.AdminStats{
		TotalUsers: len(dir),
		Users:      make([]models.UsageRow, 0, len(dir)),
	}

	for _, u := range dir {
		st.TotalRevenue += u.TotalSpent
		st.TotalGenerations += u.UsageCount
		if u.LastLoginDate == today {
			st.ActiveUsersToday++
		}
		st.Users = append(st.Users, models.UsageRow{
			Username:   u.Username,
			Membership: u.Membership,
			Credits:    u.Credits,
			InvitedBy:  u.InvitedBy,
			UsageCount: u.UsageCount,
			TotalSpent: u.TotalSpent,
		})
	}

	sort.Slice(st.Users, func(i, j int) bool {
		return st.Users[i].Username < st.Users[j].Username
	})

	top := make([]models.UsageRow, len(st.Users))
	copy(top, st.Users)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].UsageCount > top[j].UsageCount
	})
	if len(top) > TopUsersLimit {
		top = top[:TopUsersLimit]
	}
	st.TopUsers = top

	return st
}
