package ledger

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/api/httperrors"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/util"
)

func PostSelectRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Ledger.POST("/select", postSelectHandler(s))
}

func postSelectHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body PostSelectPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return httperrors.ErrBadRequestInvalidBody.WithDetail(err.Error())
		}

		identity, err := s.Selector.SelectAddress(ctx, *body.Address, body.Path)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to select address")

			if errors.Is(err, ledger.ErrNotFound) {
				return httperrors.ErrNotFoundAddress.WithInternal(err)
			}

			return httperrors.ErrBadGatewayLogin.WithInternal(err)
		}

		return util.ValidateAndReturn(c, http.StatusOK, &IdentityResponse{
			Address:        identity.Address,
			DerivationPath: identity.DerivationPath,
			WalletKind:     identity.WalletKind,
		})
	}
}
