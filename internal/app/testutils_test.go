package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/denizerden/table-reservation-system/api"
	"github.com/denizerden/table-reservation-system/internal/mailer"
	"github.com/denizerden/table-reservation-system/internal/schedule"
	appvalidator "github.com/denizerden/table-reservation-system/internal/validator"
)

// Monday, June 2nd 2025, 10:00 local time.
var testNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func newTestCalendar(t *testing.T) *schedule.Calendar {
	t.Helper()

	hours, err := schedule.ParseWeekHours("default=11:00-23:00,Sun=closed")
	if err != nil {
		t.Fatal(err)
	}

	return schedule.NewWithClock(schedule.Config{
		Location:      time.UTC,
		SlotDuration:  90 * time.Minute,
		LookAheadDays: 30,
		Hours:         hours,
	}, func() time.Time { return testNow })
}

func newTestApplication(t *testing.T, opts ...func(*Application)) *Application {
	t.Helper()

	app := &Application{
		config:         Config{Env: "test"},
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		validator:      appvalidator.NewValidator(),
		mailer:         mailer.NewMockMailer(),
		sessionManager: scs.New(),
		calendar:       newTestCalendar(t),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(method, url, bytes.NewReader(jsonData))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		if tt.wantErrMessage == "" {
			return
		}

		body := w.Body.Bytes()

		var validationResp api.ValidationErrorResponse
		if err := json.Unmarshal(body, &validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		if len(validationResp.ValidationErrors) == 0 {
			// Plain 422s carry the message directly.
			var errorResp api.ErrorResponse
			if err := json.Unmarshal(body, &errorResp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}

			if errorResp.Message != tt.wantErrMessage {
				t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
			}
			return
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
