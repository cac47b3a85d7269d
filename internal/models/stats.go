package models

// UsageRow is one line of the admin user table.
type UsageRow struct {
	Username   string
	Membership Membership
	Credits    int
	InvitedBy  string
	UsageCount int
	TotalSpent Money
}

// AdminStats is the dashboard summary over the whole directory.
type AdminStats struct {
	TotalUsers       int
	TotalRevenue     Money
	TotalGenerations int
	ActiveUsersToday int
	// TopUsers is ranked by usage, Users by username.
	TopUsers []UsageRow
	Users    []UsageRow
}
