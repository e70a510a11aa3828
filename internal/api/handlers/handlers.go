package handlers

import (
	"github.com/labstack/echo/v4"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/api/handlers/common"
	"github/chapool/ledger-login/internal/api/handlers/ledger"
	"github/chapool/ledger-login/internal/api/handlers/notifications"
	"github/chapool/ledger-login/internal/api/handlers/session"
)

func AttachAllRoutes(s *api.Server) {
	// attach our routes
	s.Router.Routes = append(s.Router.Routes, []*echo.Route{
		common.GetHealthyRoute(s),
		common.GetReadyRoute(s),
		ledger.GetStateRoute(s),
		ledger.PostPageRoute(s),
		ledger.PostSelectRoute(s),
		notifications.GetNotificationsRoute(s),
		session.DeleteSessionRoute(s),
		session.GetSessionRoute(s),
	}...)
}
