package session

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/api/httperrors"
	"github/chapool/ledger-login/internal/session"
)

func DeleteSessionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Session.DELETE("", deleteSessionHandler(s))
}

func deleteSessionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := s.Sessions.Logout(c.Request().Context()); err != nil {
			if errors.Is(err, session.ErrNoSession) {
				return httperrors.ErrNotFoundSession
			}

			return err
		}

		return c.NoContent(http.StatusNoContent)
	}
}
