package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/soraprompter/internal/account"
	"github.com/dmitrijs2005/soraprompter/internal/admin"
	"github.com/dmitrijs2005/soraprompter/internal/clock"
	"github.com/dmitrijs2005/soraprompter/internal/generation"
	"github.com/dmitrijs2005/soraprompter/internal/logging"
)

// Deps are the services the CLI drives.
type Deps struct {
	Accounts       account.Service
	Generator      generation.Service
	Admin          admin.Service
	Clock          clock.Clock
	Location       *time.Location
	MaxUploadBytes int64
	Logger         logging.Logger
}

type App struct {
	accounts  account.Service
	generator generation.Service
	admin     admin.Service
	clock     clock.Clock
	loc       *time.Location
	maxUpload int64
	logger    logging.Logger

	reader *bufio.Reader
	out    io.Writer

	userName  string
	adminMode bool
}

func NewApp(d Deps) *App {
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	return &App{
		accounts:  d.Accounts,
		generator: d.Generator,
		admin:     d.Admin,
		clock:     d.Clock,
		loc:       d.Location,
		maxUpload: d.MaxUploadBytes,
		logger:    d.Logger,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) isAdmin() bool {
	return a.adminMode
}

func (a *App) getStatus() string {
	s := a.userName
	if a.adminMode {
		if s != "" {
			s += " "
		}
		s += "admin"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// restoreSession picks up a session left by an earlier run.
func (a *App) restoreSession(ctx context.Context) {
	u, err := a.accounts.CurrentUser(ctx)
	if err != nil {
		a.logger.Warn(ctx, "session restore failed", "error", err)
		return
	}
	if u != nil {
		a.userName = u.Username
		fmt.Fprintf(a.out, "Welcome back, %s.\n", u.Username)
	}
}

// Run restores the session and serves the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "SoraPrompter CLI (type 'help' for commands)")
	a.restoreSession(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}
