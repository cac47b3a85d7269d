package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/soraprompter/internal/common"
	"github.com/dmitrijs2005/soraprompter/internal/models"
)

// Admin enters admin mode after a password check and prints the
// statistics. "admin users" lists every user, "admin exit" leaves the mode.
func (a *App) Admin(ctx context.Context, args []string) error {
	if !a.admin.Enabled() {
		fmt.Fprintln(a.out, "Admin access is disabled.")
		return nil
	}

	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}

	if sub == "exit" {
		a.adminMode = false
		fmt.Fprintln(a.out, "Left admin mode.")
		return nil
	}

	if !a.adminMode {
		password, err := getPassword(a.out)
		if err != nil {
			return err
		}
		ok := a.admin.Authenticate(password)
		common.WipeByteArray(password)
		if !ok {
			a.logger.Warn(ctx, "admin authentication failed")
			fmt.Fprintln(a.out, "Access denied.")
			return nil
		}
		a.adminMode = true
		a.logger.Info(ctx, "admin mode entered")
	}

	st, err := a.admin.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Users: %d  Revenue: $%s  Generations: %d  Active today: %d\n",
		st.TotalUsers, st.TotalRevenue, st.TotalGenerations, st.ActiveUsersToday)

	rows, title := st.TopUsers, "Top users by usage"
	if sub == "users" {
		rows, title = st.Users, "All users"
	}
	fmt.Fprintln(a.out, title+":")
	printUsageRows(a, rows)
	return nil
}

func printUsageRows(a *App, rows []models.UsageRow) {
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "  (none)")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  USER\tTIER\tCREDITS\tUSES\tSPENT\tINVITED BY")
	for _, r := range rows {
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%d\t$%s\t%s\n", r.Username, r.Membership, r.Credits, r.UsageCount, r.TotalSpent, r.InvitedBy)
	}
	_ = tw.Flush()
}
