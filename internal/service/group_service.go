package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/mmynk/splitsync/internal/apiclient"
	"github.com/mmynk/splitsync/internal/cache"
	"github.com/mmynk/splitsync/internal/models"
)

// GroupService reads and writes groups, members and invitations.
type GroupService struct {
	deps
}

// NewGroup is the input of CreateGroup.
type NewGroup struct {
	Name         string `json:"name" validate:"required,max=100"`
	Description  string `json:"description" validate:"max=500"`
	CurrencyCode string `json:"currency_code" validate:"omitempty,len=3,uppercase"`
}

// NewInvitation is the input of CreateInvitation.
type NewInvitation struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
	Role  string `json:"role" validate:"omitempty,oneof=member admin"`
}

// ListGroups returns the groups the user belongs to.
func (s *GroupService) ListGroups(ctx context.Context, force bool) ([]models.UserGroup, error) {
	return s.caches.Groups.Get(ctx, "", func(ctx context.Context) ([]models.UserGroup, error) {
		return apiclient.Call[[]models.UserGroup](ctx, s.api, apiclient.Request{
			Method: http.MethodGet,
			Path:   "/groups",
			Auth:   true,
		})
	}, cache.WithForce(force))
}

// CreateGroup creates a group owned by the user.
func (s *GroupService) CreateGroup(ctx context.Context, in NewGroup) (models.CreatedGroup, error) {
	in.Name = strings.TrimSpace(in.Name)
	s.logger.Info("CreateGroup request received", "name", in.Name)

	if err := validate.Struct(in); err != nil {
		return models.CreatedGroup{}, invalidInput(err)
	}
	if in.CurrencyCode == "" {
		in.CurrencyCode = defaultCurrency
	}

	group, err := apiclient.Call[models.CreatedGroup](ctx, s.api, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/groups",
		Body:   in,
		Auth:   true,
	})
	if err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return models.CreatedGroup{}, err
	}
	s.caches.Invalidate(OpCreateGroup, group.ID)

	s.logger.Info("Group created", "group_id", group.ID)
	return group, nil
}

// ListMembers returns the members of a group, pending invitees included.
func (s *GroupService) ListMembers(ctx context.Context, groupID models.ID, force bool) ([]models.GroupMember, error) {
	if err := requireID("group id", groupID); err != nil {
		return nil, err
	}
	return s.caches.Members.Get(ctx, cache.Key(string(groupID)), func(ctx context.Context) ([]models.GroupMember, error) {
		return apiclient.Call[[]models.GroupMember](ctx, s.api, apiclient.Request{
			Method: http.MethodGet,
			Path:   groupPath(groupID, "members"),
			Auth:   true,
		})
	}, cache.WithForce(force))
}

// CreateInvitation invites an email address to a group.
func (s *GroupService) CreateInvitation(ctx context.Context, groupID models.ID, in NewInvitation) (models.CreateInvitationResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	s.logger.Info("CreateInvitation request received", "group_id", groupID, "email", in.Email)

	if err := requireID("group id", groupID); err != nil {
		return models.CreateInvitationResult{}, err
	}
	if err := validate.Struct(in); err != nil {
		return models.CreateInvitationResult{}, invalidInput(err)
	}
	if in.Role == "" {
		in.Role = "member"
	}

	result, err := apiclient.Call[models.CreateInvitationResult](ctx, s.api, apiclient.Request{
		Method: http.MethodPost,
		Path:   groupPath(groupID, "invitations"),
		Body:   in,
		Auth:   true,
	})
	if err != nil {
		s.logger.Error("CreateInvitation failed", "group_id", groupID, "error", err)
		return models.CreateInvitationResult{}, err
	}
	s.caches.Invalidate(OpInviteMember, groupID)
	return result, nil
}

// GetInvitation looks up an invitation by token. No sign-in is needed.
func (s *GroupService) GetInvitation(ctx context.Context, token string) (models.Invitation, error) {
	if strings.TrimSpace(token) == "" {
		return models.Invitation{}, invalidInput(errInvitationToken)
	}
	return apiclient.Call[models.Invitation](ctx, s.api, apiclient.Request{
		Method:  http.MethodGet,
		Path:    path("invitations", token),
		NoRetry: true,
	})
}

// AcceptInvitation joins the invitation's group as the signed-in user.
func (s *GroupService) AcceptInvitation(ctx context.Context, token string) (models.Message, error) {
	if strings.TrimSpace(token) == "" {
		return models.Message{}, invalidInput(errInvitationToken)
	}
	s.logger.Info("AcceptInvitation request received")

	msg, err := apiclient.Call[models.Message](ctx, s.api, apiclient.Request{
		Method: http.MethodPost,
		Path:   path("invitations", token, "accept"),
		Auth:   true,
	})
	if err != nil {
		return models.Message{}, err
	}
	// The token does not say which group it was for.
	s.caches.Invalidate(OpAcceptInvitation, "")
	return msg, nil
}

// JoinViaInvitation joins the invitation's group without a session, with an
// existing account's password or a new account's name and password.
func (s *GroupService) JoinViaInvitation(ctx context.Context, token, password, name string) (models.Message, error) {
	if strings.TrimSpace(token) == "" {
		return models.Message{}, invalidInput(errInvitationToken)
	}
	if password == "" {
		return models.Message{}, invalidInput(errInvitationPassword)
	}

	msg, err := apiclient.Call[models.Message](ctx, s.api, apiclient.Request{
		Method:  http.MethodPost,
		Path:    path("invitations", token, "join"),
		Body:    map[string]string{"password": password, "name": strings.TrimSpace(name)},
		NoRetry: true,
	})
	if err != nil {
		return models.Message{}, err
	}
	s.caches.Invalidate(OpJoinInvitation, "")
	return msg, nil
}
