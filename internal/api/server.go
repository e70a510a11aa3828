package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dropbox/godropbox/time2"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/i18n"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/metrics"
	"github/chapool/ledger-login/internal/notify"
	"github/chapool/ledger-login/internal/session"
	"github/chapool/ledger-login/internal/util"
)

type Router struct {
	Routes       []*echo.Route
	Root         *echo.Group
	Management   *echo.Group
	APIV1Ledger  *echo.Group
	APIV1Notify  *echo.Group
	APIV1Session *echo.Group
}

// Server is a central struct keeping all the dependencies.
// It is initialized with wire, which handles making the new instances of the components
// in the right order. To add a new component, 3 steps are required:
// - declaring it in this struct
// - adding a provider function in providers.go
// - adding the provider's function name to the arguments of wire.Build() in wire.go
//
// Components labeled as `wire:"-"` will be skipped and have to be initialized after the InitNewServer* call.
// For more information about wire refer to https://pkg.go.dev/github.com/google/wire
type Server struct {
	// skip wire:
	// -> initialized with router.Init(s) function
	Echo   *echo.Echo `wire:"-"`
	Router *Router    `wire:"-"`

	Config        config.Server
	Clock         time2.Clock
	I18n          *i18n.Service
	Metrics       *metrics.Service
	Signer        ledger.HardwareSigner
	Oracle        ledger.BalanceOracle
	Sessions      *session.Store
	Notifications *notify.Feed
	Pages         *ledger.Controller
	Selector      *ledger.Selector
}

// newServerWithComponents is used by wire to initialize the server components.
// Components not listed here won't be handled by wire and should be initialized separately.
// Components which shouldn't be handled must be labeled `wire:"-"` in Server struct.
func newServerWithComponents(
	cfg config.Server,
	clock time2.Clock,
	i18n *i18n.Service,
	metrics *metrics.Service,
	signer ledger.HardwareSigner,
	oracle ledger.BalanceOracle,
	sessions *session.Store,
	feed *notify.Feed,
	pages *ledger.Controller,
	selector *ledger.Selector,
) *Server {
	return &Server{
		Config:        cfg,
		Clock:         clock,
		I18n:          i18n,
		Metrics:       metrics,
		Signer:        signer,
		Oracle:        oracle,
		Sessions:      sessions,
		Notifications: feed,
		Pages:         pages,
		Selector:      selector,
	}
}

func (s *Server) Ready() bool {
	if err := util.IsStructInitialized(s); err != nil {
		log.Debug().Err(err).Msg("Server is not fully initialized")
		return false
	}

	return true
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil {
		return fmt.Errorf("failed to start echo server: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")

		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			errs = append(errs, err)
		}
	}

	return errs
}
