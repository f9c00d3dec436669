package models

// Expense is the header of a group expense.
type Expense struct {
	ID      ID     `json:"id"`
	GroupID ID     `json:"group_id"`
	Title   string `json:"title"`
	Notes   string `json:"notes,omitempty"`

	// Amount is the expense total as a decimal string.
	Amount       string   `json:"amount"`
	CurrencyCode string   `json:"currency_code"`
	Date         string   `json:"date"`
	CategoryID   ID       `json:"category_id,omitempty"`
	Tags         []string `json:"tags,omitempty"`

	CreatedAt string `json:"created_at"`
	CreatedBy ID     `json:"created_by"`
	UpdatedAt string `json:"updated_at"`
	UpdatedBy ID     `json:"updated_by"`
}

// Payment records how much one party paid toward an expense.
type Payment struct {
	ID            ID           `json:"id"`
	ExpenseID     ID           `json:"expense_id"`
	UserID        ID           `json:"user_id"`
	PendingUserID ID           `json:"pending_user_id,omitempty"`
	Amount        string       `json:"amount"`
	PaymentMethod string       `json:"payment_method,omitempty"`
	CreatedAt     string       `json:"created_at"`
	User          UserSummary  `json:"user"`
	PendingUser   *UserSummary `json:"pending_user,omitempty"`
}

// Split records how much one party owes for an expense.
type Split struct {
	ID            ID     `json:"id"`
	ExpenseID     ID     `json:"expense_id"`
	UserID        ID     `json:"user_id"`
	PendingUserID ID     `json:"pending_user_id,omitempty"`
	AmountOwned   string `json:"amount_owned"`
	SplitType     string `json:"split_type"`

	// ShareValue is the percentage or share count the split was built from.
	ShareValue  string       `json:"share_value,omitempty"`
	CreatedAt   string       `json:"created_at"`
	User        UserSummary  `json:"user"`
	PendingUser *UserSummary `json:"pending_user,omitempty"`
}

// GroupExpense is a row of GET /groups/{id}/expenses/search.
type GroupExpense struct {
	Expense  Expense   `json:"expense"`
	Payments []Payment `json:"payments"`
}

// ExpenseDetail is returned by GET /groups/{id}/expenses/{eid} and by
// POST /groups/{id}/expenses.
type ExpenseDetail struct {
	Expense  Expense   `json:"expense"`
	Payments []Payment `json:"payments"`
	Splits   []Split   `json:"splits"`
}

// PaymentInput is one payer line of a new expense.
type PaymentInput struct {
	UserID        ID     `json:"user_id,omitempty"`
	PendingUserID ID     `json:"pending_user_id,omitempty"`
	Amount        string `json:"amount" validate:"required,numeric"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// SplitInput is one ownership line of a new expense. Which of Percentage,
// Shares and Amount is set depends on Type.
type SplitInput struct {
	UserID        ID     `json:"user_id,omitempty"`
	PendingUserID ID     `json:"pending_user_id,omitempty"`
	Type          string `json:"type"`
	Percentage    string `json:"percentage,omitempty"`
	Shares        int64  `json:"shares,omitempty"`
	Amount        string `json:"amount,omitempty"`
}

// CreateExpenseRequest is the body of POST /groups/{id}/expenses.
type CreateExpenseRequest struct {
	Title        string         `json:"title"`
	Notes        string         `json:"notes"`
	Amount       string         `json:"amount"`
	CurrencyCode string         `json:"currency_code"`
	Date         string         `json:"date"`
	CategoryID   ID             `json:"category_id,omitempty"`
	Tags         []string       `json:"tags"`
	Payments     []PaymentInput `json:"payments"`
	Splits       []SplitInput   `json:"splits"`
}
