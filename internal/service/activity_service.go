package service

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mmynk/splitsync/internal/apiclient"
	"github.com/mmynk/splitsync/internal/cache"
	"github.com/mmynk/splitsync/internal/models"
)

// DefaultActivityPageSize is the page size of ListActivity when none is given.
const DefaultActivityPageSize = 8

// ActivityService reads group activity feeds.
type ActivityService struct {
	deps
}

// ListActivity returns one page of a group's activity feed, newest first.
func (s *ActivityService) ListActivity(ctx context.Context, groupID models.ID, page Page, force bool) ([]models.Activity, error) {
	if err := requireID("group id", groupID); err != nil {
		return nil, err
	}
	page = page.withDefaultLimit(DefaultActivityPageSize)
	key := cache.Key(string(groupID), strconv.Itoa(page.Limit), strconv.Itoa(page.Offset))

	return s.caches.Activity.Get(ctx, key, func(ctx context.Context) ([]models.Activity, error) {
		return apiclient.Call[[]models.Activity](ctx, s.api, apiclient.Request{
			Method: http.MethodGet,
			Path:   groupPath(groupID, "activity"),
			Query:  page.query(),
			Auth:   true,
		})
	}, cache.WithForce(force))
}
