package router

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/api/handlers"
	"github/chapool/ledger-login/internal/api/httperrors"
	"github/chapool/ledger-login/internal/api/middleware"
)

// Init creates the echo instance, wires the middlewares and attaches every route to s.
func Init(s *api.Server) error {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Logger.SetOutput(&echoLogWriter{})

	s.Echo.HTTPErrorHandler = httperrors.HTTPErrorHandlerWithConfig(httperrors.HTTPErrorHandlerConfig{
		HideInternalServerErrorDetails: s.Config.Echo.HideInternalServerErrorDetails,
	})

	if s.Config.Echo.EnableRecoverMiddleware {
		s.Echo.Use(echoMiddleware.RecoverWithConfig(echoMiddleware.RecoverConfig{
			LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
				log.Error().Err(err).Bytes("stack", stack).Str("path", c.Request().URL.Path).Msg("Recovered from panic")
				return err
			},
		}))
	} else {
		log.Warn().Msg("Disabling recover middleware due to environment config")
	}

	if s.Config.Echo.EnableRequestIDMiddleware {
		s.Echo.Use(echoMiddleware.RequestID())
	} else {
		log.Warn().Msg("Disabling request ID middleware due to environment config")
	}

	if s.Config.Echo.EnableLoggerMiddleware {
		s.Echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Level: s.Config.Logger.ZerologRequestLevel(),
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/-/healthy" || c.Path() == "/metrics"
			},
		}))
	} else {
		log.Warn().Msg("Disabling logger middleware due to environment config")
	}

	if s.Config.Echo.EnableCORSMiddleware {
		s.Echo.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
			AllowOrigins: s.Config.Echo.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		}))
	} else {
		log.Warn().Msg("Disabling CORS middleware due to environment config")
	}

	if s.Config.Management.EnableMetrics {
		s.Echo.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "ledger",
			Subsystem:  "http",
			Registerer: s.Metrics.Registry,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
	}

	s.Router = &api.Router{
		Routes:       nil, // will be populated by handlers.AttachAllRoutes(s)
		Root:         s.Echo.Group(""),
		Management:   s.Echo.Group("/-"),
		APIV1Ledger:  s.Echo.Group("/api/v1/ledger"),
		APIV1Notify:  s.Echo.Group("/api/v1/notifications"),
		APIV1Session: s.Echo.Group("/api/v1/session"),
	}

	if s.Config.Management.EnableMetrics {
		s.Router.Routes = append(s.Router.Routes,
			s.Router.Root.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}))))
	}

	handlers.AttachAllRoutes(s)

	return nil
}

// echoLogWriter forwards echo's own log output to zerolog.
type echoLogWriter struct{}

func (w *echoLogWriter) Write(p []byte) (int, error) {
	log.Debug().Str("source", "echo").Msg(string(p))
	return len(p), nil
}
