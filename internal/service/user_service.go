package service

import (
	"context"
	"net/http"

	"github.com/mmynk/splitsync/internal/apiclient"
	"github.com/mmynk/splitsync/internal/cache"
	"github.com/mmynk/splitsync/internal/models"
)

// UserService reads the signed-in user's profile.
type UserService struct {
	deps
}

// Me returns the signed-in user.
func (s *UserService) Me(ctx context.Context, force bool) (models.Me, error) {
	return s.caches.Me.Get(ctx, "", func(ctx context.Context) (models.Me, error) {
		return apiclient.Call[models.Me](ctx, s.api, apiclient.Request{
			Method: http.MethodGet,
			Path:   "/users/me",
			Auth:   true,
		})
	}, cache.WithForce(force))
}
