package models

// Settlement statuses.
const (
	SettlementPending   = "pending"
	SettlementCompleted = "completed"
	SettlementCancelled = "cancelled"
)

// Settlement represents a payment between group members to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement.
	ID ID `json:"id"`

	// GroupID is the group this settlement belongs to.
	GroupID ID `json:"group_id"`

	// Payer is who paid (debtor settling up). One of the two IDs is set.
	PayerID            ID `json:"payer_id,omitempty"`
	PayerPendingUserID ID `json:"payer_pending_user_id,omitempty"`

	// Payee is who received payment (creditor being paid).
	PayeeID            ID `json:"payee_id,omitempty"`
	PayeePendingUserID ID `json:"payee_pending_user_id,omitempty"`

	// Amount is the payment amount as a decimal string.
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`

	// Status is one of pending, completed or cancelled.
	Status string `json:"status"`

	PaymentMethod        string `json:"payment_method,omitempty"`
	TransactionReference string `json:"transaction_reference,omitempty"`
	PaidAt               string `json:"paid_at,omitempty"`

	// Notes is an optional description for the settlement.
	Notes string `json:"notes,omitempty"`

	CreatedAt string `json:"created_at"`
	CreatedBy ID     `json:"created_by"`
	UpdatedAt string `json:"updated_at"`
	UpdatedBy ID     `json:"updated_by"`
}

// SettlementParty is the resolved payer or payee on a listed settlement.
type SettlementParty struct {
	UserID        ID     `json:"user_id,omitempty"`
	PendingUserID ID     `json:"pending_user_id,omitempty"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	IsPending     bool   `json:"is_pending,omitempty"`
}

// SettlementWithUsers is a settlement row from GET /groups/{id}/settlements.
type SettlementWithUsers struct {
	Settlement
	Payer SettlementParty `json:"payer"`
	Payee SettlementParty `json:"payee"`
}

// CreateSettlementInput is the body of POST /groups/{id}/settlements.
type CreateSettlementInput struct {
	PayerID              ID     `json:"payer_id,omitempty"`
	PayerPendingUserID   ID     `json:"payer_pending_user_id,omitempty"`
	PayeeID              ID     `json:"payee_id,omitempty"`
	PayeePendingUserID   ID     `json:"payee_pending_user_id,omitempty"`
	Amount               string `json:"amount" validate:"required,numeric"`
	CurrencyCode         string `json:"currency_code" validate:"omitempty,len=3,uppercase"`
	Status               string `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
	PaymentMethod        string `json:"payment_method,omitempty"`
	TransactionReference string `json:"transaction_reference,omitempty"`
	Notes                string `json:"notes,omitempty"`
}
