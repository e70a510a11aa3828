package ledger

import (
	"net/http"

	"github.com/go-openapi/validate"
	"github.com/labstack/echo/v4"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/api/httperrors"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/util"
)

func PostPageRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Ledger.POST("/page", postPageHandler(s))
}

// postPageHandler starts loading a page and answers right away with the
// fetching state. Progress is polled via /state.
func postPageHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body PostPagePayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return httperrors.ErrBadRequestInvalidBody.WithDetail(err.Error())
		}

		if err := validate.MaximumInt("page", "body", *body.Page, ledger.MaxPage, false); err != nil {
			return httperrors.ErrBadRequestInvalidPage.WithInternal(err)
		}

		page := int(*body.Page)
		log.Debug().Int("page", page).Msg("Selecting address page")
		s.Pages.SelectPage(ctx, page)

		return util.ValidateAndReturn(c, http.StatusAccepted, newStateResponse(s.Pages.State(), s.Pages.Records()))
	}
}
