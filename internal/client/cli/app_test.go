package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/soraprompter/internal/clock"
	"github.com/dmitrijs2005/soraprompter/internal/common"
	"github.com/dmitrijs2005/soraprompter/internal/filex"
	"github.com/dmitrijs2005/soraprompter/internal/generation"
	"github.com/dmitrijs2005/soraprompter/internal/logging"
	"github.com/dmitrijs2005/soraprompter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (n nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (n nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (n nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (n nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (n nopLogger) With(args ...any) logging.Logger                    { return n }

type fakeAccounts struct {
	// Register
	regUser   string
	regPass   []byte
	regInvite string
	regRes    models.Result

	// Login
	loginUser string
	loginRes  models.Result

	current   *models.User
	upgraded  []models.Membership
	logoutErr error
	err       error
}

func (f *fakeAccounts) Register(_ context.Context, user string, pass []byte, invite string) (models.Result, error) {
	f.regUser, f.regPass, f.regInvite = user, append([]byte(nil), pass...), invite
	return f.regRes, f.err
}
func (f *fakeAccounts) Login(_ context.Context, user string, pass []byte) (models.Result, error) {
	f.loginUser = user
	return f.loginRes, f.err
}
func (f *fakeAccounts) Logout(context.Context) error { return f.logoutErr }
func (f *fakeAccounts) CurrentUser(context.Context) (*models.User, error) {
	return f.current, f.err
}
func (f *fakeAccounts) DeductCredit(context.Context) (bool, error) { return true, nil }
func (f *fakeAccounts) UpgradeMembership(_ context.Context, tier models.Membership) error {
	f.upgraded = append(f.upgraded, tier)
	return f.err
}

type fakeGenerator struct {
	res       *generation.Result
	err       error
	charged   int
	uncharged int
}

func (f *fakeGenerator) Generate(context.Context, *models.Media) (*generation.Result, error) {
	f.charged++
	return f.res, f.err
}
func (f *fakeGenerator) GenerateUncharged(context.Context, *models.Media) (*generation.Result, error) {
	f.uncharged++
	return f.res, f.err
}

type fakeAdmin struct {
	enabled  bool
	password string
	stats    *models.AdminStats
}

func (f *fakeAdmin) Enabled() bool { return f.enabled }
func (f *fakeAdmin) Authenticate(pw []byte) bool {
	return f.enabled && string(pw) == f.password
}
func (f *fakeAdmin) Stats(context.Context) (*models.AdminStats, error) { return f.stats, nil }

var testNow = time.Date(2025, 5, 10, 10, 0, 0, 0, time.UTC)

func newTestApp(acc *fakeAccounts, gen *fakeGenerator, adm *fakeAdmin, input string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	a := NewApp(Deps{
		Accounts:       acc,
		Generator:      gen,
		Admin:          adm,
		Clock:          clock.NewManual(testNow),
		Location:       time.UTC,
		MaxUploadBytes: 1 << 20,
		Logger:         nopLogger{},
	})
	a.reader = bufio.NewReader(strings.NewReader(input))
	a.out = out
	return a, out
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func stubMedia(t *testing.T, err error) {
	t.Helper()
	orig := loadMedia
	loadMedia = func(path string, maxSize int64) (*models.Media, error) {
		if err != nil {
			return nil, err
		}
		return &models.Media{Name: path, MIMEType: "image/png", Data: []byte{1}}, nil
	}
	t.Cleanup(func() { loadMedia = orig })
}

func TestRegister_WithInviteCode(t *testing.T) {
	stubPassword(t, "secret")
	acc := &fakeAccounts{regRes: models.Result{Success: true, Code: models.CodeOK}}
	a, out := newTestApp(acc, nil, nil, "alice\nAB12CD\n")

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, "alice", acc.regUser)
	assert.Equal(t, []byte("secret"), acc.regPass)
	assert.Equal(t, "AB12CD", acc.regInvite)
	assert.Contains(t, out.String(), "Registration successful")
	assert.False(t, a.isLoggedIn())
}

func TestRegister_Duplicate(t *testing.T) {
	stubPassword(t, "secret")
	acc := &fakeAccounts{regRes: models.Result{Code: models.CodeDuplicateUsername, Message: "username already exists"}}
	a, out := newTestApp(acc, nil, nil, "alice\n\n")

	require.NoError(t, a.Register(context.Background()))
	assert.Contains(t, out.String(), "Registration failed: username already exists")
}

func TestRegister_EmptyUsername(t *testing.T) {
	acc := &fakeAccounts{}
	a, out := newTestApp(acc, nil, nil, "\n")

	require.NoError(t, a.Register(context.Background()))
	assert.Empty(t, acc.regUser)
	assert.Contains(t, out.String(), "Username must not be empty")
}

func TestRegister_StorageError(t *testing.T) {
	stubPassword(t, "secret")
	acc := &fakeAccounts{err: common.ErrStorage}
	a, _ := newTestApp(acc, nil, nil, "alice\n\n")

	require.ErrorIs(t, a.Register(context.Background()), common.ErrStorage)
}

func TestLogin_BonusAndPlain(t *testing.T) {
	stubPassword(t, "pw")

	acc := &fakeAccounts{loginRes: models.Result{Success: true, Code: models.CodeBonusGranted}}
	a, out := newTestApp(acc, nil, nil, "bob\n")
	require.NoError(t, a.Login(context.Background()))
	assert.True(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Daily bonus: +3 credits")

	acc = &fakeAccounts{loginRes: models.Result{Success: true, Code: models.CodeOK}}
	a, out = newTestApp(acc, nil, nil, "bob\n")
	require.NoError(t, a.Login(context.Background()))
	assert.Contains(t, out.String(), "Logged in.")
}

func TestLogin_BadCredentials(t *testing.T) {
	stubPassword(t, "nope")
	acc := &fakeAccounts{loginRes: models.Result{Code: models.CodeBadCredentials, Message: "wrong username or password"}}
	a, out := newTestApp(acc, nil, nil, "bob\n")

	require.NoError(t, a.Login(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Login failed")
}

func TestLogout_LeavesAdminMode(t *testing.T) {
	a, out := newTestApp(&fakeAccounts{}, nil, nil, "")
	a.userName, a.adminMode = "bob", true

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.False(t, a.isAdmin())
	assert.Contains(t, out.String(), "Logged out.")
}

func TestStatus(t *testing.T) {
	expiry := testNow.Add(48 * time.Hour)
	acc := &fakeAccounts{current: &models.User{
		Username:         "vip",
		Membership:       models.MembershipVIP,
		MembershipExpiry: &expiry,
		Credits:          2,
		InviteCode:       "ZZ99AA",
		UsageCount:       7,
		TotalSpent:       690,
	}}
	a, out := newTestApp(acc, nil, nil, "")

	require.NoError(t, a.Status(context.Background()))
	s := out.String()
	assert.Contains(t, s, "VIP until:   2025-05-12 10:00 (active)")
	assert.Contains(t, s, "Credits:     unlimited")
	assert.Contains(t, s, "Invite code: ZZ99AA")
	assert.Contains(t, s, "Total spent: $6.90")
}

func TestStatus_NoSession(t *testing.T) {
	a, out := newTestApp(&fakeAccounts{}, nil, nil, "")
	a.userName = "stale"

	require.NoError(t, a.Status(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Not logged in.")
}

func TestGenerate_ChargedAndAdmin(t *testing.T) {
	stubMedia(t, nil)
	gen := &fakeGenerator{res: &generation.Result{Prompt: "A drone shot over dunes", Charged: true}}
	a, out := newTestApp(&fakeAccounts{}, gen, nil, "")

	require.NoError(t, a.Generate(context.Background(), "dunes.png"))
	assert.Equal(t, 1, gen.charged)
	assert.Contains(t, out.String(), "Analyzing image dunes.png")
	assert.Contains(t, out.String(), "A drone shot over dunes")

	a.adminMode = true
	require.NoError(t, a.Generate(context.Background(), "dunes.png"))
	assert.Equal(t, 1, gen.charged)
	assert.Equal(t, 1, gen.uncharged)
}

func TestGenerate_Refusals(t *testing.T) {
	tests := []struct {
		name     string
		mediaErr error
		genErr   error
		want     string
	}{
		{name: "not media", mediaErr: filex.ErrNotMedia, want: "image or a video"},
		{name: "too large", mediaErr: filex.ErrTooLarge, want: "too large (limit 1 MB)"},
		{name: "unreadable", mediaErr: errors.New("no such file"), want: "Cannot read"},
		{name: "not logged in", genErr: common.ErrNotAuthenticated, want: "Please log in first."},
		{name: "no credits", genErr: common.ErrInsufficientCredits, want: "Out of credits"},
		{name: "extract failed", genErr: errors.New("quota"), want: "Generation failed: quota"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubMedia(t, tt.mediaErr)
			a, out := newTestApp(&fakeAccounts{}, &fakeGenerator{err: tt.genErr}, nil, "")
			require.NoError(t, a.Generate(context.Background(), "x"))
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestGenerate_Usage(t *testing.T) {
	a, out := newTestApp(&fakeAccounts{}, &fakeGenerator{}, nil, "")
	require.NoError(t, a.Generate(context.Background(), ""))
	assert.Contains(t, out.String(), "Usage: generate")
}

func TestUpgrade_Confirmed(t *testing.T) {
	acc := &fakeAccounts{current: &models.User{Username: "bob", Membership: models.MembershipSVIP}}
	a, out := newTestApp(acc, nil, nil, "y\n")
	a.userName = "bob"

	require.NoError(t, a.Upgrade(context.Background(), "svip"))
	assert.Equal(t, []models.Membership{models.MembershipSVIP}, acc.upgraded)
	assert.Contains(t, out.String(), "$29.90")
	assert.Contains(t, out.String(), "You are now SVIP")
}

func TestUpgrade_Cancelled(t *testing.T) {
	acc := &fakeAccounts{}
	a, out := newTestApp(acc, nil, nil, "n\n")
	a.userName = "bob"

	require.NoError(t, a.Upgrade(context.Background(), "vip"))
	assert.Empty(t, acc.upgraded)
	assert.Contains(t, out.String(), "20 days, $6.90")
	assert.Contains(t, out.String(), "Payment cancelled.")
}

func TestUpgrade_UnknownTierAndNoSession(t *testing.T) {
	acc := &fakeAccounts{}
	a, out := newTestApp(acc, nil, nil, "")

	require.NoError(t, a.Upgrade(context.Background(), "gold"))
	assert.Contains(t, out.String(), "Usage: upgrade vip|svip")

	require.NoError(t, a.Upgrade(context.Background(), "vip"))
	assert.Contains(t, out.String(), "Please log in first.")
	assert.Empty(t, acc.upgraded)
}

func TestAdmin(t *testing.T) {
	adm := &fakeAdmin{enabled: true, password: "root", stats: &models.AdminStats{
		TotalUsers:       2,
		TotalRevenue:     3680,
		TotalGenerations: 11,
		ActiveUsersToday: 1,
		TopUsers:         []models.UsageRow{{Username: "bob", Membership: models.MembershipVIP, UsageCount: 9, TotalSpent: 690}},
		Users: []models.UsageRow{
			{Username: "alice", Membership: models.MembershipFree, Credits: 3, UsageCount: 2},
			{Username: "bob", Membership: models.MembershipVIP, UsageCount: 9, TotalSpent: 690},
		},
	}}

	t.Run("wrong password", func(t *testing.T) {
		stubPassword(t, "guess")
		a, out := newTestApp(&fakeAccounts{}, nil, adm, "")
		require.NoError(t, a.Admin(context.Background(), nil))
		assert.False(t, a.isAdmin())
		assert.Contains(t, out.String(), "Access denied.")
	})

	t.Run("stats then users then exit", func(t *testing.T) {
		stubPassword(t, "root")
		a, out := newTestApp(&fakeAccounts{}, nil, adm, "")

		require.NoError(t, a.Admin(context.Background(), nil))
		assert.True(t, a.isAdmin())
		assert.Contains(t, out.String(), "Users: 2  Revenue: $36.80  Generations: 11  Active today: 1")
		assert.Contains(t, out.String(), "Top users by usage:")

		out.Reset()
		require.NoError(t, a.Admin(context.Background(), []string{"users"}))
		assert.Contains(t, out.String(), "All users:")
		assert.Contains(t, out.String(), "alice")

		require.NoError(t, a.Admin(context.Background(), []string{"exit"}))
		assert.False(t, a.isAdmin())
	})

	t.Run("disabled", func(t *testing.T) {
		a, out := newTestApp(&fakeAccounts{}, nil, &fakeAdmin{}, "")
		require.NoError(t, a.Admin(context.Background(), nil))
		assert.Contains(t, out.String(), "Admin access is disabled.")
	})
}

func TestRestoreSessionAndStatus(t *testing.T) {
	acc := &fakeAccounts{current: &models.User{Username: "carol"}}
	a, out := newTestApp(acc, nil, nil, "")

	a.restoreSession(context.Background())
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(carol)", a.getStatus())
	assert.Contains(t, out.String(), "Welcome back, carol.")

	a.adminMode = true
	assert.Equal(t, "(carol admin)", a.getStatus())
}
