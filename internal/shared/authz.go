package shared

// Marketplace permissions checked by the capability gate and route guards.
const (
	PermBrowseGigs     = "browse_gigs"
	PermPlaceBids      = "place_bids"
	PermMessageSellers = "message_sellers"
	PermViewOwnOrders  = "view_own_orders"

	PermCreateGigs      = "create_gigs"
	PermManageBids      = "manage_bids"
	PermMessageBuyers   = "message_buyers"
	PermUploadDocuments = "upload_documents"

	PermModerateContent = "moderate_content"
	PermManageDisputes  = "manage_disputes"
	PermViewReports     = "view_reports"

	PermViewUsers        = "view_users"
	PermViewTransactions = "view_transactions"
	PermRespondTickets   = "respond_tickets"

	PermManageUsers   = "manage_users"
	PermManageRoles   = "manage_roles"
	PermViewAnalytics = "view_analytics"

	// PermWildcard grants every permission.
	PermWildcard = "*"
)

// MarketplaceScopes lists every named permission, wildcard excluded.
func MarketplaceScopes() []string {
	return []string{
		PermBrowseGigs,
		PermPlaceBids,
		PermMessageSellers,
		PermViewOwnOrders,
		PermCreateGigs,
		PermManageBids,
		PermMessageBuyers,
		PermUploadDocuments,
		PermModerateContent,
		PermManageDisputes,
		PermViewReports,
		PermViewUsers,
		PermViewTransactions,
		PermRespondTickets,
		PermManageUsers,
		PermManageRoles,
		PermViewAnalytics,
	}
}
