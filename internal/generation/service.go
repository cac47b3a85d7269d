// Package generation runs the upload-to-prompt flow: it checks that the
// session owner may generate, calls the extractor and charges the account
// once a prompt has been produced.
package generation

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/soraprompter/internal/clock"
	"github.com/dmitrijs2005/soraprompter/internal/common"
	"github.com/dmitrijs2005/soraprompter/internal/extractor"
	"github.com/dmitrijs2005/soraprompter/internal/logging"
	"github.com/dmitrijs2005/soraprompter/internal/models"
	"github.com/google/uuid"
)

// Accounts is the part of the account engine the flow depends on.
type Accounts interface {
	CurrentUser(ctx context.Context) (*models.User, error)
	DeductCredit(ctx context.Context) (bool, error)
}

// Result is a finished generation.
type Result struct {
	ID      string
	Prompt  string
	Charged bool
}

type Service interface {
	// Generate extracts a prompt for the session owner and charges them.
	Generate(ctx context.Context, m *models.Media) (*Result, error)
	// GenerateUncharged extracts a prompt without any account checks.
	GenerateUncharged(ctx context.Context, m *models.Media) (*Result, error)
}

type service struct {
	accounts  Accounts
	extractor extractor.Extractor
	clock     clock.Clock
	logger    logging.Logger
	newID     func() string
}

func NewService(accounts Accounts, ex extractor.Extractor, clk clock.Clock, logger logging.Logger) Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &service{
		accounts:  accounts,
		extractor: ex,
		clock:     clk,
		logger:    logger,
		newID:     func() string { return uuid.NewString() },
	}
}

func (s *service) Generate(ctx context.Context, m *models.Media) (*Result, error) {
	u, err := s.accounts.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, common.ErrNotAuthenticated
	}
	if !u.CanGenerate(s.clock.Now()) {
		return nil, common.ErrInsufficientCredits
	}

	res, err := s.extract(ctx, m)
	if err != nil {
		return nil, err
	}

	ok, err := s.accounts.DeductCredit(ctx)
	if err != nil {
		s.logger.Error(ctx, "charge after generation failed", "id", res.ID, "username", u.Username, "error", err)
		return res, nil
	}
	if !ok {
		s.logger.Warn(ctx, "generation not charged", "id", res.ID, "username", u.Username)
		return res, nil
	}

	res.Charged = true
	s.logger.Info(ctx, "generation charged", "id", res.ID, "username", u.Username)
	return res, nil
}

func (s *service) GenerateUncharged(ctx context.Context, m *models.Media) (*Result, error) {
	res, err := s.extract(ctx, m)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "uncharged generation", "id", res.ID)
	return res, nil
}

func (s *service) extract(ctx context.Context, m *models.Media) (*Result, error) {
	id := s.newID()
	s.logger.Debug(ctx, "extracting prompt", "id", id, "media", m.Name, "mime", m.MIMEType, "bytes", len(m.Data))

	prompt, err := s.extractor.Extract(ctx, m)
	if err != nil {
		s.logger.Error(ctx, "extraction failed", "id", id, "error", err)
		return nil, fmt.Errorf("extract prompt: %w", err)
	}
	return &Result{ID: id, Prompt: prompt}, nil
}
