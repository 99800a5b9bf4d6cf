package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storeapi/internal/checkout"
	"storeapi/internal/middleware"
	"storeapi/internal/models"
)

type fakeSessions struct {
	byRef      map[string]*models.PaymentSession
	advanceErr error
}

func (f *fakeSessions) Create(ctx context.Context, s *models.PaymentSession) error {
	f.byRef[s.Reference] = s
	return nil
}

func (f *fakeSessions) FindActiveByID(ctx context.Context, id string) (*models.PaymentSession, error) {
	for _, s := range f.byRef {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeSessions) FindActiveByReference(ctx context.Context, ref string) (*models.PaymentSession, error) {
	s, ok := f.byRef[ref]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (f *fakeSessions) AdvanceStatus(ctx context.Context, id, from, to string) error {
	if f.advanceErr != nil {
		return f.advanceErr
	}
	for _, s := range f.byRef {
		if s.ID == id && s.Status == from {
			s.Status = to
			return nil
		}
	}
	return errors.New("no matching row")
}

func (f *fakeSessions) ClaimConfirmation(ctx context.Context, id, orderRef string) (bool, error) {
	return false, errors.New("not used")
}

func (f *fakeSessions) SetGatewayResponse(ctx context.Context, id, payload string) error {
	return nil
}

type fakeDeduper struct {
	duplicate bool
	marked    []string
}

func (f *fakeDeduper) Seen(ctx context.Context, key string) (bool, error) {
	return f.duplicate, nil
}

func (f *fakeDeduper) Mark(ctx context.Context, key string) error {
	f.marked = append(f.marked, key)
	return nil
}

func notifyRequest(t *testing.T, h *WebhookHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/payment/smartpay/notify", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Notify(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	return rec
}

func newWebhookFixture(duplicate bool) (*WebhookHandler, *fakeSessions, *fakeDeduper) {
	sessions := &fakeSessions{byRef: map[string]*models.PaymentSession{
		"PS-1-abc": {ID: "s1", Reference: "PS-1-abc", Status: models.SessionCreated},
	}}
	svc := checkout.NewService(sessions, nil, nil, nil, zap.NewNop())
	deduper := &fakeDeduper{duplicate: duplicate}
	return NewWebhookHandler(svc, deduper, zap.NewNop()), sessions, deduper
}

func TestWebhookNotify(t *testing.T) {
	t.Run("Given a successful notification When delivered Then the session is approved and the delivery recorded", func(t *testing.T) {
		h, sessions, deduper := newWebhookFixture(false)
		rec := notifyRequest(t, h, `{"trackid":"PS-1-abc","result":"CAPTURED"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := sessions.byRef["PS-1-abc"].Status; got != models.SessionApproved {
			t.Errorf("session status = %q, want approved", got)
		}
		if len(deduper.marked) != 1 || deduper.marked[0] != "PS-1-abc:captured" {
			t.Errorf("marked = %v, want the applied delivery recorded", deduper.marked)
		}
	})

	t.Run("Given a failure notification When delivered Then the session is failed", func(t *testing.T) {
		h, sessions, _ := newWebhookFixture(false)
		notifyRequest(t, h, `{"reference":"PS-1-abc","status":"Declined"}`)
		if got := sessions.byRef["PS-1-abc"].Status; got != models.SessionFailed {
			t.Errorf("session status = %q, want failed", got)
		}
	})

	t.Run("Given an unrecognized result When delivered Then the session and the dedup slot are untouched", func(t *testing.T) {
		h, sessions, deduper := newWebhookFixture(false)
		rec := notifyRequest(t, h, `{"trackid":"PS-1-abc","result":"Pending"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := sessions.byRef["PS-1-abc"].Status; got != models.SessionCreated {
			t.Errorf("session status = %q, want unchanged", got)
		}
		if len(deduper.marked) != 0 {
			t.Errorf("marked = %v, an ignored notification must not consume the slot", deduper.marked)
		}
	})

	t.Run("Given an unrecognized result first When the definitive result retries Then it is applied not deduplicated", func(t *testing.T) {
		sessions := &fakeSessions{byRef: map[string]*models.PaymentSession{
			"PS-1-abc": {ID: "s1", Reference: "PS-1-abc", Status: models.SessionCreated},
		}}
		svc := checkout.NewService(sessions, nil, nil, nil, zap.NewNop())
		deduper, err := middleware.NewNotificationDeduper("", "", 0, time.Minute)
		if err != nil {
			t.Fatalf("NewNotificationDeduper: %v", err)
		}
		h := NewWebhookHandler(svc, deduper, zap.NewNop())

		notifyRequest(t, h, `{"trackid":"PS-1-abc","result":"Pending"}`)
		rec := notifyRequest(t, h, `{"trackid":"PS-1-abc","result":"CAPTURED"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "duplicate") {
			t.Fatalf("body = %s, definitive result was dropped as duplicate", rec.Body.String())
		}
		if got := sessions.byRef["PS-1-abc"].Status; got != models.SessionApproved {
			t.Errorf("session status = %q, want approved", got)
		}

		rec = notifyRequest(t, h, `{"trackid":"PS-1-abc","result":"CAPTURED"}`)
		if !strings.Contains(rec.Body.String(), "duplicate") {
			t.Errorf("body = %s, want the replay deduplicated", rec.Body.String())
		}
	})

	t.Run("Given a store failure applying the notification When delivered Then it is not recorded so the retry can land", func(t *testing.T) {
		h, sessions, deduper := newWebhookFixture(false)
		sessions.advanceErr = errors.New("connection reset")
		rec := notifyRequest(t, h, `{"trackid":"PS-1-abc","result":"CAPTURED"}`)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500 so the provider retries", rec.Code)
		}
		if len(deduper.marked) != 0 {
			t.Errorf("marked = %v, a failed apply must not consume the slot", deduper.marked)
		}

		sessions.advanceErr = nil
		notifyRequest(t, h, `{"trackid":"PS-1-abc","result":"CAPTURED"}`)
		if got := sessions.byRef["PS-1-abc"].Status; got != models.SessionApproved {
			t.Errorf("session status = %q, want approved after the retry", got)
		}
	})

	t.Run("Given a duplicate notification When delivered Then it is acknowledged without applying", func(t *testing.T) {
		h, sessions, _ := newWebhookFixture(true)
		rec := notifyRequest(t, h, `{"trackid":"PS-1-abc","result":"CAPTURED"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "duplicate") {
			t.Errorf("body = %s", rec.Body.String())
		}
		if got := sessions.byRef["PS-1-abc"].Status; got != models.SessionCreated {
			t.Errorf("session status = %q, want unchanged", got)
		}
	})

	t.Run("Given an unknown reference When delivered Then it is still acknowledged", func(t *testing.T) {
		h, _, _ := newWebhookFixture(false)
		rec := notifyRequest(t, h, `{"trackid":"PS-does-not-exist","result":"CAPTURED"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, gateway retries on anything else", rec.Code)
		}
	})

	t.Run("Given a body without a reference When delivered Then it is rejected as malformed", func(t *testing.T) {
		h, _, _ := newWebhookFixture(false)
		rec := notifyRequest(t, h, `{"result":"CAPTURED"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("Given a non-json body When delivered Then it is rejected as malformed", func(t *testing.T) {
		h, _, _ := newWebhookFixture(false)
		rec := notifyRequest(t, h, `not json at all`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}
