// Package service exposes the ledger resources through caches.
//
// Client is the composition root: it owns the transport, the session store
// and one Caches value. Reads go through a per-resource cache; writes go
// through the transport and then invalidate the caches they affect.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/splitsync/internal/apiclient"
	"github.com/mmynk/splitsync/internal/cache"
	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/session"
)

// ErrInvalidInput wraps client-side validation failures. The wrapped error
// is a validator.ValidationErrors, a *calculator.ValidationError or an auth
// credential error.
var ErrInvalidInput = errors.New("invalid input")

const defaultCurrency = "USD"

var validate = validator.New(validator.WithRequiredStructEnabled())

func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// Options configures a Client.
type Options struct {
	Logger *slog.Logger
	// Registerer receives cache metrics. Nil disables registration.
	Registerer prometheus.Registerer
	// Clock overrides time.Now for cache expiry.
	Clock func() time.Time
}

// deps is shared by every resource service.
type deps struct {
	api    *apiclient.Client
	store  session.Store
	caches *Caches
	logger *slog.Logger
}

// Client groups the resource services around one cache manager.
type Client struct {
	Auth        *AuthService
	Users       *UserService
	Groups      *GroupService
	Expenses    *ExpenseService
	Balances    *BalanceService
	Settlements *SettlementService
	Activity    *ActivityService
	Themes      *ThemeService

	caches *Caches
}

// NewClient creates a Client on top of api. Each Client has its own caches.
func NewClient(api *apiclient.Client, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cacheOpts := []cache.Option{
		cache.WithLogger(logger),
		cache.WithMetrics(cache.NewMetrics(opts.Registerer)),
	}
	if opts.Clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(opts.Clock))
	}
	caches := NewCaches(cacheOpts...)

	d := deps{api: api, store: api.Store(), caches: caches, logger: logger}
	return &Client{
		Auth:        &AuthService{deps: d},
		Users:       &UserService{deps: d},
		Groups:      &GroupService{deps: d},
		Expenses:    &ExpenseService{deps: d},
		Balances:    &BalanceService{deps: d},
		Settlements: &SettlementService{deps: d},
		Activity:    &ActivityService{deps: d},
		Themes:      &ThemeService{deps: d},
		caches:      caches,
	}
}

// Caches returns the cache manager.
func (c *Client) Caches() *Caches {
	return c.caches
}

// Page selects a window of a paginated list.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) withDefaultLimit(limit int) Page {
	if p.Limit <= 0 {
		p.Limit = limit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func (p Page) query() url.Values {
	return url.Values{
		"limit":  {fmt.Sprint(p.Limit)},
		"offset": {fmt.Sprint(p.Offset)},
	}
}

// path joins escaped segments under the service root.
func path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func groupPath(groupID models.ID, rest ...string) string {
	return path(append([]string{"groups", string(groupID)}, rest...)...)
}

func requireID(name string, id models.ID) error {
	if id.IsZero() {
		return invalidInput(fmt.Errorf("%s is required", name))
	}
	return nil
}

var (
	errInvitationToken    = errors.New("invitation token is required")
	errInvitationPassword = errors.New("password is required to join")
)
