package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func testSnapshot() OrderSnapshot {
	return OrderSnapshot{
		Reference: "PS-1-abc",
		Amount:    99,
		Currency:  "SAR",
		FirstName: "Nora",
		LastName:  "Hassan",
		Email:     "nora@example.com",
		Mobile:    "0555555555",
		Street:    "1 Main St",
		City:      "Riyadh",
		Country:   "SA",
	}
}

func testConfig(baseURL, transport string) Config {
	return Config{
		Enabled:   true,
		Secret:    "sk_test_12345",
		BaseURL:   baseURL,
		Transport: transport,
	}
}

func TestCreatePaymentPreconditions(t *testing.T) {
	t.Run("Given a disabled gateway When invoked Then it fails fast", func(t *testing.T) {
		c := New(Config{Enabled: false, Secret: "x"}, zap.NewNop())
		_, err := c.CreatePayment(context.Background(), testSnapshot(), Overrides{})
		if !errors.Is(err, ErrDisabled) {
			t.Fatalf("err = %v, want ErrDisabled", err)
		}
		if !IsConfigError(err) {
			t.Fatal("disabled gateway should be a config error")
		}
	})

	t.Run("Given a missing secret When invoked Then it fails fast", func(t *testing.T) {
		c := New(Config{Enabled: true, Secret: "  "}, zap.NewNop())
		_, err := c.CreatePayment(context.Background(), testSnapshot(), Overrides{})
		if !errors.Is(err, ErrMissingSecret) {
			t.Fatalf("err = %v, want ErrMissingSecret", err)
		}
	})
}

func TestCreatePaymentJSON(t *testing.T) {
	t.Run("Given a first candidate serving an error page When invoked Then the next candidate succeeds", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/svc/json/PaymentRequest":
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte("<html>Request Error</html>"))
			case "/svc/Json/PaymentRequest":
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"Url":"https://pay.example/abc"}`))
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
				w.WriteHeader(http.StatusInternalServerError)
			}
		}))
		defer srv.Close()

		c := New(testConfig(srv.URL+"/svc", TransportJSON), zap.NewNop())
		res, err := c.CreatePayment(context.Background(), testSnapshot(), Overrides{})
		if err != nil {
			t.Fatalf("CreatePayment: %v", err)
		}
		if res.PaymentURL != "https://pay.example/abc" {
			t.Errorf("PaymentURL = %q", res.PaymentURL)
		}
		if !strings.HasSuffix(res.Candidate, "/svc/Json/PaymentRequest") {
			t.Errorf("Candidate = %q, want the second variant", res.Candidate)
		}
		if res.Transport != TransportJSON {
			t.Errorf("Transport = %q", res.Transport)
		}
	})

	t.Run("Given a provider rejection When invoked Then a RejectionError with status and detail surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPaymentRequired)
			w.Write([]byte(`{"message":"card declined"}`))
		}))
		defer srv.Close()

		c := New(testConfig(srv.URL+"/svc", TransportJSON), zap.NewNop())
		_, err := c.CreatePayment(context.Background(), testSnapshot(), Overrides{})
		var rejection *RejectionError
		if !errors.As(err, &rejection) {
			t.Fatalf("err = %v, want RejectionError", err)
		}
		if rejection.StatusCode != http.StatusPaymentRequired {
			t.Errorf("StatusCode = %d", rejection.StatusCode)
		}
		if rejection.Detail != "card declined" {
			t.Errorf("Detail = %q", rejection.Detail)
		}
	})

	t.Run("Given a success response without a url When invoked Then an UnparseableError surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		c := New(testConfig(srv.URL+"/svc", TransportJSON), zap.NewNop())
		_, err := c.CreatePayment(context.Background(), testSnapshot(), Overrides{})
		var unparseable *UnparseableError
		if !errors.As(err, &unparseable) {
			t.Fatalf("err = %v, want UnparseableError", err)
		}
	})

	t.Run("Given every candidate soft-failing with transport json When invoked Then an ExhaustedError surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("<html>Request Error</html>"))
		}))
		defer srv.Close()

		c := New(testConfig(srv.URL+"/svc", TransportJSON), zap.NewNop())
		_, err := c.CreatePayment(context.Background(), testSnapshot(), Overrides{})
		var exhausted *ExhaustedError
		if !errors.As(err, &exhausted) {
			t.Fatalf("err = %v, want ExhaustedError", err)
		}
		if exhausted.Transport != TransportJSON {
			t.Errorf("Transport = %q", exhausted.Transport)
		}
	})
}

func TestCreatePaymentSOAPFallback(t *testing.T) {
	t.Run("Given exhausted json candidates When transport is auto Then a soap redirect yields the payment url", func(t *testing.T) {
		const target = "https://pay.example/soap-session"
		var soapAttempts int

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/PaymentRequest") {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte("<html>Request Error</html>"))
				return
			}
			// SOAP posts land on the service root.
			soapAttempts++
			if r.Header.Get("SOAPAction") == `"http://tempuri.org/PaymentRequest"` {
				w.Header().Set("Location", target)
				w.WriteHeader(http.StatusFound)
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := New(testConfig(srv.URL+"/svc", TransportAuto), zap.NewNop())
		res, err := c.CreatePayment(context.Background(), testSnapshot(), Overrides{})
		if err != nil {
			t.Fatalf("CreatePayment: %v", err)
		}
		if res.PaymentURL != target {
			t.Errorf("PaymentURL = %q, want %q", res.PaymentURL, target)
		}
		if res.Transport != TransportSOAP {
			t.Errorf("Transport = %q, want soap", res.Transport)
		}
		if soapAttempts < 2 {
			t.Errorf("soapAttempts = %d, want at least 2 header variants tried", soapAttempts)
		}
	})

	t.Run("Given soap failing too When transport is auto Then the error names the soap fallback", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("<html>Request Error</html>"))
		}))
		defer srv.Close()

		c := New(testConfig(srv.URL+"/svc", TransportAuto), zap.NewNop())
		_, err := c.CreatePayment(context.Background(), testSnapshot(), Overrides{})
		if err == nil {
			t.Fatal("want error")
		}
		if !strings.Contains(err.Error(), "soap fallback failed") {
			t.Errorf("err = %v, want soap fallback context", err)
		}
	})
}

func TestBuildEnvelope(t *testing.T) {
	req := BuildRequest(testSnapshot(), Config{Secret: "tok<&>"}, Overrides{})

	t.Run("Given wrapped mode When built Then fields sit inside a request element", func(t *testing.T) {
		env := BuildEnvelope(req, true)
		if !strings.Contains(env, "<PaymentRequest xmlns=\"http://tempuri.org/\"><request>") {
			t.Errorf("envelope missing wrapped request element: %s", env)
		}
	})

	t.Run("Given flat mode When built Then fields sit directly under the operation", func(t *testing.T) {
		env := BuildEnvelope(req, false)
		if strings.Contains(env, "<request>") {
			t.Error("flat envelope should have no request wrapper")
		}
		if !strings.Contains(env, "<trackid>PS-1-abc</trackid>") {
			t.Errorf("envelope missing trackid: %s", env)
		}
	})

	t.Run("Given reserved xml characters When built Then they are escaped", func(t *testing.T) {
		env := BuildEnvelope(req, false)
		if !strings.Contains(env, "tok&lt;&amp;&gt;") {
			t.Errorf("secret not escaped: %s", env)
		}
	})
}
