package notifications

import (
	"net/http"
	"strconv"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
	"github.com/labstack/echo/v4"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/api/httperrors"
	"github/chapool/ledger-login/internal/notify"
	"github/chapool/ledger-login/internal/util"
)

const headerAcceptLanguage = "Accept-Language"

type Notification struct {
	Seq uint64 `json:"seq"`

	// Enum: [success error]
	Level string `json:"level"`

	Title     string `json:"title"`
	Message   string `json:"message,omitempty"`
	TimeoutMS int64  `json:"timeout_ms"`

	// Format: date-time
	CreatedAt strfmt.DateTime `json:"created_at"`
}

func (n *Notification) Validate(formats strfmt.Registry) error {
	if err := validate.EnumCase("level", "body", n.Level, []any{notify.LevelSuccess, notify.LevelError}, true); err != nil {
		return err
	}

	if err := validate.FormatOf("created_at", "body", "date-time", n.CreatedAt.String(), formats); err != nil {
		return err
	}

	return nil
}

type Response struct {
	LastSeq uint64 `json:"last_seq"`

	// Required: true
	Notifications []*Notification `json:"notifications"`
}

func (r *Response) Validate(formats strfmt.Registry) error {
	if err := validate.Required("notifications", "body", r.Notifications); err != nil {
		return err
	}

	var res []error
	for _, n := range r.Notifications {
		if err := n.Validate(formats); err != nil {
			res = append(res, err)
		}
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

func newResponse(lastSeq uint64, entries []notify.Entry) *Response {
	res := &Response{
		LastSeq:       lastSeq,
		Notifications: make([]*Notification, 0, len(entries)),
	}

	for _, e := range entries {
		res.Notifications = append(res.Notifications, &Notification{
			Seq:       e.Seq,
			Level:     e.Level,
			Title:     e.Title,
			Message:   e.Message,
			TimeoutMS: e.TimeoutMS,
			CreatedAt: strfmt.DateTime(e.CreatedAt),
		})
	}

	return res
}

func GetNotificationsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Notify.GET("", getNotificationsHandler(s))
}

// getNotificationsHandler returns the notifications newer than ?after=<seq>,
// titles localized by Accept-Language.
func getNotificationsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		var after uint64
		if raw := c.QueryParam("after"); raw != "" {
			var err error
			after, err = strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return httperrors.ErrBadRequestInvalidAfter.WithInternal(err)
			}
		}

		lang := s.I18n.ParseAcceptLanguage(c.Request().Header.Get(headerAcceptLanguage))

		return util.ValidateAndReturn(c, http.StatusOK, newResponse(s.Notifications.LastSeq(), s.Notifications.After(after, lang)))
	}
}
