package ledger

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/util"
)

func GetStateRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Ledger.GET("/state", getStateHandler(s))
}

func getStateHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return util.ValidateAndReturn(c, http.StatusOK, newStateResponse(s.Pages.State(), s.Pages.Records()))
	}
}
