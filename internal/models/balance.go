package models

// GroupBalance is one member's totals in a group (GET /groups/{id}/balances).
// Balance is positive when the member is owed money.
type GroupBalance struct {
	UserID        ID     `json:"user_id"`
	UserEmail     string `json:"user_email"`
	UserName      string `json:"user_name,omitempty"`
	UserAvatarURL string `json:"user_avatar_url,omitempty"`
	TotalPaid     string `json:"total_paid"`
	TotalOwed     string `json:"total_owed"`
	Balance       string `json:"balance"`
}

// Debt is one outstanding "debtor owes creditor amount" row
// (GET /groups/{id}/debts), already net of settlements.
type Debt struct {
	DebtorID              ID     `json:"debtor_id"`
	DebtorPendingUserID   ID     `json:"debtor_pending_user_id,omitempty"`
	DebtorEmail           string `json:"debtor_email"`
	DebtorName            string `json:"debtor_name,omitempty"`
	CreditorID            ID     `json:"creditor_id"`
	CreditorPendingUserID ID     `json:"creditor_pending_user_id,omitempty"`
	CreditorEmail         string `json:"creditor_email"`
	CreditorName          string `json:"creditor_name,omitempty"`
	Amount                string `json:"amount"`
}

// OverallBalance is the signed-in user's position in one group
// (GET /users/me/balances).
type OverallBalance struct {
	GroupID      ID     `json:"group_id"`
	GroupName    string `json:"group_name"`
	CurrencyCode string `json:"currency_code"`
	TotalPaid    string `json:"total_paid"`
	TotalOwed    string `json:"total_owed"`
	Balance      string `json:"balance"`
}
