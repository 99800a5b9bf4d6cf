package gateway

import "testing"

func TestExtractURL(t *testing.T) {
	const want = "https://pay.example/abc"

	cases := []struct {
		name string
		body string
	}{
		{"bare string body", `https://pay.example/abc`},
		{"quoted string body", `"https://pay.example/abc"`},
		{"named url field", `{"url":"https://pay.example/abc"}`},
		{"named Url field", `{"Url":"https://pay.example/abc"}`},
		{"named URL field", `{"URL":"https://pay.example/abc"}`},
		{"legacy d as url", `{"d":"https://pay.example/abc"}`},
		{"legacy d as wrapped json", `{"d":"{\"url\":\"https://pay.example/abc\"}"}`},
		{"nested data object", `{"data":{"url":"https://pay.example/abc"}}`},
		{"raw scan in xml", `<resp><target>https://pay.example/abc</target></resp>`},
	}
	for _, tc := range cases {
		t.Run("Given "+tc.name+" When extracted Then the payment url is found", func(t *testing.T) {
			if got := ExtractURL([]byte(tc.body)); got != want {
				t.Fatalf("ExtractURL = %q, want %q", got, want)
			}
		})
	}

	t.Run("Given a body with no url When extracted Then empty is returned", func(t *testing.T) {
		for _, body := range []string{``, `{"ok":true}`, `success`, `{"url":"not-a-url"}`} {
			if got := ExtractURL([]byte(body)); got != "" {
				t.Errorf("ExtractURL(%q) = %q, want empty", body, got)
			}
		}
	})
}

func TestIsHTTPURL(t *testing.T) {
	if !IsHTTPURL("http://h/x") || !IsHTTPURL("https://h/x") {
		t.Error("absolute http(s) urls should pass")
	}
	for _, s := range []string{"", "ftp://h/x", "/relative/path", "https://"} {
		if IsHTTPURL(s) {
			t.Errorf("IsHTTPURL(%q) = true, want false", s)
		}
	}
}

func TestLooksLikeHTMLError(t *testing.T) {
	t.Run("Given an html content type When checked Then it is an error page", func(t *testing.T) {
		if !LooksLikeHTMLError("text/html; charset=utf-8", []byte(`{}`)) {
			t.Fatal("want true")
		}
	})
	t.Run("Given html markers in the body When checked Then it is an error page", func(t *testing.T) {
		for _, body := range []string{`<!DOCTYPE html><html>`, `<HTML><body>oops`, `Request Error: invalid operation`} {
			if !LooksLikeHTMLError("application/json", []byte(body)) {
				t.Errorf("body %q: want true", body)
			}
		}
	})
	t.Run("Given a json body When checked Then it is not an error page", func(t *testing.T) {
		if LooksLikeHTMLError("application/json", []byte(`{"message":"declined"}`)) {
			t.Fatal("want false")
		}
	})
}

func TestExtractErrorDetail(t *testing.T) {
	t.Run("Given known json keys When extracted Then the message is returned", func(t *testing.T) {
		cases := map[string]string{
			`{"message":"card declined"}`: "card declined",
			`{"Message":"card declined"}`: "card declined",
			`{"error":"bad token"}`:       "bad token",
			`{"detail":"expired"}`:        "expired",
		}
		for body, want := range cases {
			if got := ExtractErrorDetail([]byte(body)); got != want {
				t.Errorf("ExtractErrorDetail(%q) = %q, want %q", body, got, want)
			}
		}
	})
	t.Run("Given a non-json body When extracted Then raw text is returned truncated", func(t *testing.T) {
		long := make([]byte, 500)
		for i := range long {
			long[i] = 'x'
		}
		if got := ExtractErrorDetail(long); len(got) != 300 {
			t.Fatalf("len = %d, want 300", len(got))
		}
	})
}
