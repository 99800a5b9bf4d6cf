package gateway

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

// The provider's response shape is under-documented and has changed over
// time, so extraction is an ordered list of independent rules rather than
// one struct decode. First rule that yields a well-formed URL wins.
type extractRule struct {
	name string
	fn   func(body []byte) string
}

var extractRules = []extractRule{
	{"plain-string", fromPlainString},
	{"named-field", fromNamedField},
	{"legacy-wrapped", fromLegacyWrapped},
	{"nested-field", fromNestedField},
	{"raw-scan", fromRawScan},
}

// ExtractURL pulls a hosted-payment URL out of a response body of unknown
// shape. Returns "" when nothing matches; the caller decides whether that
// is a soft or hard failure.
func ExtractURL(body []byte) string {
	for _, rule := range extractRules {
		if u := rule.fn(body); IsHTTPURL(u) {
			return u
		}
	}
	return ""
}

// IsHTTPURL reports whether s is a well-formed absolute http(s) URL.
func IsHTTPURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// A bare string body that is itself the URL, optionally quote-wrapped.
func fromPlainString(body []byte) string {
	s := strings.TrimSpace(string(body))
	s = strings.Trim(s, `"`)
	return s
}

func fromNamedField(body []byte) string {
	m := decodeObject(body)
	for _, key := range []string{"url", "Url", "URL"} {
		if s, ok := m[key].(string); ok {
			return s
		}
	}
	return ""
}

// Legacy ASMX convention: the real payload lives under "d", either as the
// URL itself or as a JSON string wrapping it.
func fromLegacyWrapped(body []byte) string {
	m := decodeObject(body)
	d, ok := m["d"].(string)
	if !ok {
		return ""
	}
	if IsHTTPURL(d) {
		return d
	}
	return fromNamedField([]byte(d))
}

func fromNestedField(body []byte) string {
	m := decodeObject(body)
	data, ok := m["data"].(map[string]interface{})
	if !ok {
		return ""
	}
	for _, key := range []string{"url", "Url"} {
		if s, ok := data[key].(string); ok {
			return s
		}
	}
	return ""
}

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>\\]+`)

func fromRawScan(body []byte) string {
	return urlPattern.FindString(string(body))
}

func decodeObject(body []byte) map[string]interface{} {
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return nil
	}
	return m
}

// LooksLikeHTMLError detects the generic error page some endpoint variants
// serve when the path shape is wrong. That signals "try the next
// candidate", not a rejected request.
func LooksLikeHTMLError(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "<html") ||
		strings.Contains(lower, "<!doctype html") ||
		strings.Contains(lower, "request error")
}

// ExtractErrorDetail pulls a human-readable message out of a rejection
// body, JSON first, raw text as a fallback.
func ExtractErrorDetail(body []byte) string {
	if m := decodeObject(body); m != nil {
		for _, key := range []string{"message", "Message", "error", "Error", "detail", "Detail"} {
			if s, ok := m[key].(string); ok && s != "" {
				return s
			}
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
