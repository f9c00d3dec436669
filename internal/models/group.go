package models

// UserGroup is one group the signed-in user belongs to, together with the
// user's own membership in it.
type UserGroup struct {
	// ID is the unique identifier for the group.
	ID ID `json:"id"`

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string `json:"name"`

	Description  string `json:"description,omitempty"`
	CurrencyCode string `json:"currency_code"`
	CreatedAt    string `json:"created_at"`

	// Membership fields describe the caller's own seat in the group.
	MembershipID   ID     `json:"membership_id"`
	MemberRole     string `json:"member_role"`
	MemberStatus   string `json:"member_status"`
	MemberJoinedAt string `json:"member_joined_at,omitempty"`
}

// CreatedGroup is returned by POST /groups.
type CreatedGroup struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	CurrencyCode string `json:"currency_code"`
	CreatedAt    string `json:"created_at"`
	Role         string `json:"role"`
}

// Member statuses.
const (
	MemberStatusActive  = "active"
	MemberStatusPending = "pending"
)

// GroupMember is one seat in a group. Pending members are invitees without a
// registered account; their UserID is a pending-user identifier.
type GroupMember struct {
	ID              ID          `json:"id"`
	GroupID         ID          `json:"group_id"`
	UserID          ID          `json:"user_id"`
	InvitationToken string      `json:"invitation_token,omitempty"`
	Role            string      `json:"role"`
	Status          string      `json:"status"`
	InvitedAt       string      `json:"invited_at,omitempty"`
	JoinedAt        string      `json:"joined_at,omitempty"`
	User            UserSummary `json:"user"`
}

// IsPending reports whether the member is an invitee without an account.
func (m GroupMember) IsPending() bool {
	return m.Status == MemberStatusPending
}

// Party returns the member as an expense or settlement party.
func (m GroupMember) Party() Party {
	if m.IsPending() {
		return Party{PendingUserID: m.UserID}
	}
	return Party{UserID: m.UserID}
}

// Party references either a registered user or a pending invitee.
type Party struct {
	UserID        ID `json:"user_id,omitempty"`
	PendingUserID ID `json:"pending_user_id,omitempty"`
}

// IsPending reports whether the party is a pending invitee.
func (p Party) IsPending() bool {
	return p.PendingUserID != ""
}

// ID returns whichever identifier is set.
func (p Party) ID() ID {
	if p.PendingUserID != "" {
		return p.PendingUserID
	}
	return p.UserID
}

// Invitation is the public view of an invitation token (GET /invitations/{token}).
type Invitation struct {
	ID           ID     `json:"id"`
	GroupID      ID     `json:"group_id"`
	GroupName    string `json:"group_name,omitempty"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	ExpiresAt    string `json:"expires_at"`
	InvitedBy    ID     `json:"invited_by"`
	InviterName  string `json:"inviter_name,omitempty"`
	InviterEmail string `json:"inviter_email,omitempty"`
}

// CreateInvitationResult is returned by POST /groups/{id}/invitations.
type CreateInvitationResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}
