package ledger

import (
	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
	"github/chapool/ledger-login/internal/ledger"
)

// balanceDigits is the number of fractional digits rendered for balances.
const balanceDigits = 18

type AddressRecord struct {
	Index          int    `json:"index"`
	DerivationPath string `json:"derivation_path"`
	Address        string `json:"address"`
	Balance        string `json:"balance"`
	IsBusy         bool   `json:"is_busy"`
}

type PageState struct {
	IsFetching  bool   `json:"is_fetching"`
	CurrentPage int    `json:"current_page"`
	LastError   string `json:"last_error,omitempty"`
}

type StateResponse struct {
	PageState PageState       `json:"page_state"`
	Records   []AddressRecord `json:"records"`
}

func (r *StateResponse) Validate(_ strfmt.Registry) error {
	if err := validate.Required("records", "body", r.Records); err != nil {
		return err
	}

	return nil
}

func newStateResponse(state ledger.PageState, records []ledger.AddressRecord) *StateResponse {
	res := &StateResponse{
		PageState: PageState{
			IsFetching:  state.IsFetching,
			CurrentPage: state.CurrentPage,
			LastError:   state.LastError,
		},
		Records: make([]AddressRecord, 0, len(records)),
	}

	for _, r := range records {
		res.Records = append(res.Records, AddressRecord{
			Index:          r.Index,
			DerivationPath: r.DerivationPath,
			Address:        r.Address,
			Balance:        ledger.FormatDisplay(r.Balance, balanceDigits),
			IsBusy:         r.IsBusy,
		})
	}

	return res
}

type PostPagePayload struct {
	// Required: true
	// Minimum: 0
	Page *int64 `json:"page"`
}

func (p *PostPagePayload) Validate(_ strfmt.Registry) error {
	var res []error

	if err := p.validatePage(); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

func (p *PostPagePayload) validatePage() error {
	if err := validate.Required("page", "body", p.Page); err != nil {
		return err
	}

	if err := validate.MinimumInt("page", "body", *p.Page, 0, false); err != nil {
		return err
	}

	return nil
}

type PostSelectPayload struct {
	// Required: true
	Address *string `json:"address"`
	Path    string  `json:"path,omitempty"`
}

func (p *PostSelectPayload) Validate(_ strfmt.Registry) error {
	if err := validate.Required("address", "body", p.Address); err != nil {
		return err
	}

	if err := validate.MinLength("address", "body", *p.Address, 1); err != nil {
		return err
	}

	return nil
}

type IdentityResponse struct {
	Address        string `json:"address"`
	DerivationPath string `json:"derivation_path"`
	WalletKind     string `json:"wallet_kind"`
}

func (r *IdentityResponse) Validate(_ strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("address", "body", r.Address); err != nil {
		res = append(res, err)
	}

	if err := validate.EnumCase("wallet_kind", "body", r.WalletKind, []any{ledger.WalletKindLedger}, true); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}
