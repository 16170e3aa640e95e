package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/efreitasn/tipcalc/internal/currency"
	"github.com/efreitasn/tipcalc/internal/service"
)

// testEnv bundles all dependencies for handler integration tests.
type testEnv struct {
	router http.Handler
	tipSvc *service.TipService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tipSvc, err := service.NewTipService(language.AmericanEnglish, "", currency.NewPatternRegistry(), logger)
	if err != nil {
		t.Fatalf("NewTipService: %v", err)
	}
	return &testEnv{
		router: NewRouter(tipSvc, logger),
		tipSvc: tipSvc,
	}
}

// doJSON sends a JSON request and returns the recorder.
func (env *testEnv) doJSON(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// doRaw sends a raw request with optional content-type and header overrides.
func (env *testEnv) doRaw(t *testing.T, method, path, contentType, rawBody string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(rawBody))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// decodeJSON decodes the response body into v.
func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rr.Body.String())
	}
}

// --- Healthz ---

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rr := env.doJSON(t, "GET", "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp map[string]string
	decodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

// --- GET /tip ---

func TestGetTip(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		query     string
		formatted string
		percent   string
	}{
		{"fifteen percent", "amount=100&tip_percent=15", "$15.00", "15"},
		{"zero amount", "amount=0&tip_percent=15", "$0.00", "15"},
		{"zero percent", "amount=50&tip_percent=0", "$0.00", "0"},
		{"integral round up", "amount=100&tip_percent=18&round_up=true", "$18.00", "18"},
		{"fractional round up", "amount=50&tip_percent=33&round_up=true", "$17.00", "33"},
		{"fractional no round up", "amount=50&tip_percent=33", "$16.50", "33"},
		{"omitted percent", "amount=100", "$15.00", "15"},
		{"empty percent", "amount=100&tip_percent=", "$0.00", "0"},
		{"garbage percent", "amount=100&tip_percent=lots", "$0.00", "0"},
		{"missing amount", "tip_percent=20", "$0.00", "20"},
		{"garbage amount", "amount=ten&tip_percent=20", "$0.00", "20"},
		{"invalid round_up is off", "amount=50&tip_percent=33&round_up=maybe", "$16.50", "33"},
		{"currency override", "amount=100&tip_percent=15&currency=EUR", "€15.00", "15"},
		{"locale override", "amount=100&tip_percent=15&locale=en-GB", "£15.00", "15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.doJSON(t, "GET", "/tip?"+tt.query, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			var resp tipResponse
			decodeJSON(t, rr, &resp)
			if resp.Formatted != tt.formatted {
				t.Errorf("formatted = %q, want %q", resp.Formatted, tt.formatted)
			}
			if resp.TipPercent != tt.percent {
				t.Errorf("tip_percent = %q, want %q", resp.TipPercent, tt.percent)
			}
		})
	}
}

func TestGetTip_ResponseFields(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doJSON(t, "GET", "/tip?amount=50&tip_percent=33&round_up=1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp tipResponse
	decodeJSON(t, rr, &resp)

	want := tipResponse{
		Amount:     "50",
		TipPercent: "33",
		RoundUp:    true,
		RawTip:     "16.50",
		Tip:        "17",
		Formatted:  "$17.00",
		Locale:     "en-US",
		Currency:   "USD",
	}
	if resp != want {
		t.Errorf("response = %+v, want %+v", resp, want)
	}
}

func TestGetTip_AcceptLanguage(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doRaw(t, "GET", "/tip?amount=100&tip_percent=15", "", "",
		map[string]string{"Accept-Language": "en-GB,en;q=0.8"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp tipResponse
	decodeJSON(t, rr, &resp)
	if resp.Locale != "en-GB" || resp.Formatted != "£15.00" {
		t.Errorf("locale/formatted = %s/%q, want en-GB/£15.00", resp.Locale, resp.Formatted)
	}
}

func TestGetTip_LocaleParamBeatsAcceptLanguage(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doRaw(t, "GET", "/tip?amount=100&tip_percent=15&locale=en-US", "", "",
		map[string]string{"Accept-Language": "en-GB"})
	var resp tipResponse
	decodeJSON(t, rr, &resp)
	if resp.Locale != "en-US" {
		t.Errorf("locale = %s, want en-US", resp.Locale)
	}
}

func TestGetTip_AcceptLanguageWithoutCurrencyUsesDefault(t *testing.T) {
	env := newTestEnv(t)

	for _, header := range []string{"es-419", "en-001", "*", "eo", "es-419, en-001;q=0.5"} {
		t.Run(header, func(t *testing.T) {
			rr := env.doRaw(t, "GET", "/tip?amount=1234.5&tip_percent=100", "", "",
				map[string]string{"Accept-Language": header})
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			var resp tipResponse
			decodeJSON(t, rr, &resp)
			if resp.Locale != "en-US" || resp.Formatted != "$1,234.50" {
				t.Errorf("locale/formatted = %s/%q, want en-US/$1,234.50", resp.Locale, resp.Formatted)
			}
		})
	}
}

func TestGetTip_AcceptLanguageFallsBackToLowerWeight(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doRaw(t, "GET", "/tip?amount=100&tip_percent=15", "", "",
		map[string]string{"Accept-Language": "eo, en-GB;q=0.5"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp tipResponse
	decodeJSON(t, rr, &resp)
	if resp.Locale != "en-GB" || resp.Formatted != "£15.00" {
		t.Errorf("locale/formatted = %s/%q, want en-GB/£15.00", resp.Locale, resp.Formatted)
	}
}

func TestGetTip_AcceptLanguageBareLanguage(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doRaw(t, "GET", "/tip?amount=100&tip_percent=15", "", "",
		map[string]string{"Accept-Language": "eo, en;q=0.5"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp tipResponse
	decodeJSON(t, rr, &resp)
	if resp.Formatted != "$15.00" {
		t.Errorf("formatted = %q, want $15.00", resp.Formatted)
	}
}

func TestPostTip_AcceptLanguageWithoutCurrencyUsesDefault(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doRaw(t, "POST", "/tip", "application/json", `{"amount":"100"}`,
		map[string]string{"Accept-Language": "es-419"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp tipResponse
	decodeJSON(t, rr, &resp)
	if resp.Formatted != "$15.00" {
		t.Errorf("formatted = %q, want $15.00", resp.Formatted)
	}
}

func TestGetTip_NumberTooLarge(t *testing.T) {
	env := newTestEnv(t)

	for _, query := range []string{"amount=1e20", "amount=99999999999999999999", "amount=100&tip_percent=1e25"} {
		t.Run(query, func(t *testing.T) {
			rr := env.doJSON(t, "GET", "/tip?"+query, nil)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
			}
			var resp errorResponse
			decodeJSON(t, rr, &resp)
			if resp.Error != "out_of_range" {
				t.Errorf("error = %q, want out_of_range", resp.Error)
			}
		})
	}
}

func TestGetTip_InvalidLocale(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doJSON(t, "GET", "/tip?amount=100&locale=not+a+locale", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp errorResponse
	decodeJSON(t, rr, &resp)
	if resp.Error != "validation_error" {
		t.Errorf("error = %q, want validation_error", resp.Error)
	}
}

func TestGetTip_InvalidCurrency(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doJSON(t, "GET", "/tip?amount=100&currency=ZZZZ", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestGetTip_OutOfRange(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doJSON(t, "GET", "/tip?amount=9999999999999999999&tip_percent=9999999999999999999", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp errorResponse
	decodeJSON(t, rr, &resp)
	if resp.Error != "out_of_range" {
		t.Errorf("error = %q, want out_of_range", resp.Error)
	}
}

// --- POST /tip ---

func TestPostTip(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		body      string
		formatted string
	}{
		{"string fields", `{"amount":"100","tip_percent":"15"}`, "$15.00"},
		{"number fields", `{"amount":50,"tip_percent":33,"round_up":true}`, "$17.00"},
		{"omitted percent", `{"amount":"100"}`, "$15.00"},
		{"null percent", `{"amount":"100","tip_percent":null}`, "$15.00"},
		{"empty percent", `{"amount":"100","tip_percent":""}`, "$0.00"},
		{"garbage amount", `{"amount":"abc","tip_percent":"15"}`, "$0.00"},
		{"empty object", `{}`, "$0.00"},
		{"locale in body", `{"amount":"100","locale":"en_GB.UTF-8"}`, "£15.00"},
		{"round_up as string", `{"amount":"50","tip_percent":"33","round_up":"true"}`, "$17.00"},
		{"round_up as number", `{"amount":"50","tip_percent":"33","round_up":1}`, "$17.00"},
		{"unrecognized round_up is off", `{"amount":"50","tip_percent":"33","round_up":"yes"}`, "$16.50"},
		{"null round_up is off", `{"amount":"50","tip_percent":"33","round_up":null}`, "$16.50"},
		{"boolean amount is zero", `{"amount":true,"tip_percent":"15"}`, "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.doRaw(t, "POST", "/tip", "application/json", tt.body, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			var resp tipResponse
			decodeJSON(t, rr, &resp)
			if resp.Formatted != tt.formatted {
				t.Errorf("formatted = %q, want %q", resp.Formatted, tt.formatted)
			}
		})
	}
}

func TestPostTip_InvalidRequests(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"missing content type", "", `{"amount":"100"}`},
		{"wrong content type", "text/plain", `{"amount":"100"}`},
		{"malformed json", "application/json", `{"amount":`},
		{"unknown field", "application/json", `{"amount":"100","bill":"100"}`},
		{"object amount", "application/json", `{"amount":{"value":1}}`},
		{"array round_up", "application/json", `{"round_up":[true]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.doRaw(t, "POST", "/tip", tt.contentType, tt.body, nil)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			var resp errorResponse
			decodeJSON(t, rr, &resp)
			if resp.Error != "invalid_request" {
				t.Errorf("error = %q, want invalid_request", resp.Error)
			}
		})
	}
}

// --- GET /locales ---

func TestLocales(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doJSON(t, "GET", "/locales", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp []localeResponse
	decodeJSON(t, rr, &resp)
	if len(resp) == 0 {
		t.Fatal("expected at least one locale")
	}
	for i := 1; i < len(resp); i++ {
		if resp[i-1].Locale >= resp[i].Locale {
			t.Errorf("locales not sorted: %q before %q", resp[i-1].Locale, resp[i].Locale)
		}
	}
}

// --- Middleware ---

func TestRequestID_Generated(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doJSON(t, "GET", "/healthz", nil)
	if id := rr.Header().Get(RequestIDHeader); len(id) != 36 {
		t.Errorf("%s = %q, want a generated UUID", RequestIDHeader, id)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doRaw(t, "GET", "/healthz", "", "", map[string]string{RequestIDHeader: "abc-123"})
	if id := rr.Header().Get(RequestIDHeader); id != "abc-123" {
		t.Errorf("%s = %q, want abc-123", RequestIDHeader, id)
	}
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	tipSvc, err := service.NewTipService(language.AmericanEnglish, "", currency.NewPatternRegistry(), logger)
	if err != nil {
		t.Fatalf("NewTipService: %v", err)
	}
	router := NewRouter(tipSvc, logger)

	req := httptest.NewRequest("GET", "/tip?amount=100", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (log: %s)", err, buf.String())
	}
	if entry["msg"] != "request" {
		t.Errorf("msg = %v, want request", entry["msg"])
	}
	if entry["path"] != "/tip" {
		t.Errorf("path = %v, want /tip", entry["path"])
	}
	if entry["status"] != float64(http.StatusOK) {
		t.Errorf("status = %v, want 200", entry["status"])
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", entry["request_id"])
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doJSON(t, "GET", "/unknown", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}
