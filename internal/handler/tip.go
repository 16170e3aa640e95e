package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/text/language"

	"github.com/efreitasn/tipcalc/internal/currency"
	"github.com/efreitasn/tipcalc/internal/domain"
	"github.com/efreitasn/tipcalc/internal/service"
)

// TipHandler handles HTTP requests for tip endpoints.
type TipHandler struct {
	tipSvc *service.TipService
}

// NewTipHandler creates a new TipHandler.
func NewTipHandler(tipSvc *service.TipService) *TipHandler {
	return &TipHandler{tipSvc: tipSvc}
}

// fieldText is a form field as sent by the client. It accepts a JSON
// string, number or boolean and keeps the raw text so parsing stays
// fail-soft. A null or missing field leaves Set false.
type fieldText struct {
	Text string
	Set  bool
}

func (f *fieldText) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = fieldText{}
		return nil
	}
	if bytes.Equal(b, []byte("true")) || bytes.Equal(b, []byte("false")) {
		*f = fieldText{Text: string(b), Set: true}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = fieldText{Text: s, Set: true}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = fieldText{Text: n.String(), Set: true}
	return nil
}

// tipRequest is the JSON body for POST /tip.
type tipRequest struct {
	Amount     fieldText `json:"amount"`
	TipPercent fieldText `json:"tip_percent"`
	RoundUp    fieldText `json:"round_up"`
	Locale     string    `json:"locale"`
	Currency   string    `json:"currency"`
}

// tipResponse is the JSON response for GET and POST /tip.
type tipResponse struct {
	Amount     string `json:"amount"`
	TipPercent string `json:"tip_percent"`
	RoundUp    bool   `json:"round_up"`
	RawTip     string `json:"raw_tip"`
	Tip        string `json:"tip"`
	Formatted  string `json:"formatted"`
	Locale     string `json:"locale"`
	Currency   string `json:"currency"`
}

// localeResponse is a single entry of GET /locales.
type localeResponse struct {
	Locale   string `json:"locale"`
	Currency string `json:"currency"`
	Sample   string `json:"sample"`
}

// Get handles GET /tip?amount=&tip_percent=&round_up=&locale=&currency=.
func (h *TipHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := service.QuoteRequest{
		Amount:   q.Get("amount"),
		RoundUp:  domain.ParseFlag(q.Get("round_up")),
		Locale:   q.Get("locale"),
		Currency: q.Get("currency"),
	}
	if q.Has("tip_percent") {
		p := q.Get("tip_percent")
		req.Percent = &p
	}
	if req.Locale == "" {
		req.Locale = acceptLanguage(r)
	}

	h.quote(w, req)
}

// Post handles POST /tip.
func (h *TipHandler) Post(w http.ResponseWriter, r *http.Request) {
	var body tipRequest
	if err := ParseJSON(w, r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	req := service.QuoteRequest{
		Amount:   body.Amount.Text,
		RoundUp:  domain.ParseFlag(body.RoundUp.Text),
		Locale:   body.Locale,
		Currency: body.Currency,
	}
	if body.TipPercent.Set {
		p := body.TipPercent.Text
		req.Percent = &p
	}
	if req.Locale == "" {
		req.Locale = acceptLanguage(r)
	}

	h.quote(w, req)
}

// Locales handles GET /locales.
func (h *TipHandler) Locales(w http.ResponseWriter, r *http.Request) {
	locales := h.tipSvc.Locales()

	resp := make([]localeResponse, len(locales))
	for i, l := range locales {
		resp[i] = localeResponse{
			Locale:   l.Locale,
			Currency: l.Currency,
			Sample:   l.Sample,
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}

func (h *TipHandler) quote(w http.ResponseWriter, req service.QuoteRequest) {
	q, err := h.tipSvc.Quote(req)
	if err != nil {
		mapTipError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, tipResponse{
		Amount:     q.Amount.String(),
		TipPercent: q.Percent.String(),
		RoundUp:    q.RoundUp,
		RawTip:     q.RawTip.String(),
		Tip:        q.Tip.String(),
		Formatted:  q.Formatted,
		Locale:     q.Locale,
		Currency:   q.Currency,
	})
}

// acceptLanguage returns the most preferred Accept-Language entry that
// implies a currency. It returns "" when the header is absent, malformed or
// names nothing usable, so the server default applies; a browser header
// never turns into a validation error.
func acceptLanguage(r *http.Request) string {
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return ""
	}
	for _, tag := range tags {
		if tag == language.Und || !currency.HasCurrency(tag) {
			continue
		}
		return tag.String()
	}
	return ""
}

// mapTipError maps domain errors to HTTP responses for tip endpoints.
func mapTipError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, codeValidation, validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrOutOfRange):
		WriteError(w, http.StatusUnprocessableEntity, codeOutOfRange,
			"Amount and tip percentage are too large to compute")
	default:
		WriteError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred")
	}
}
