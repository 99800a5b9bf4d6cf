package gateway

import (
	"net/url"
	"strings"
)

// SmartPay endpoint constants. The provider runs the same ASMX-era service
// on a production and a test host, with the JSON encoding reachable both
// through an explicit subpath and directly under the service root.
const (
	ProdHost = "secure.smartpay.com.sa"
	TestHost = "test.smartpay.com.sa"

	servicePath   = "SmartPayService"
	operationName = "PaymentRequest"

	// WebhookPath is where this application receives gateway notifications.
	WebhookPath = "/payment/smartpay/notify"
)

// ResolveCandidates expands a configured base URL into the ordered,
// deduplicated list of endpoint variants to try: encoding-subpath swaps
// first, then the opposite environment host for each. Pure function, no I/O.
func ResolveCandidates(base string, forceTest bool) []string {
	b := strings.Join(strings.Fields(base), "")
	if b == "" {
		host := ProdHost
		if forceTest {
			host = TestHost
		}
		b = "https://" + host + "/" + servicePath
	}
	b = collapseSlashes(strings.TrimSuffix(b, "/"))
	if !strings.HasSuffix(b, "/"+operationName) {
		// service-root URL: point it at the JSON operation explicitly
		b += "/json/" + operationName
	}

	var out []string
	seen := make(map[string]struct{})
	add := func(u string) {
		if u == "" || strings.ContainsAny(u, " \t\r\n") {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	for _, v := range encodingVariants(b) {
		primary, alternate := v, swapHost(v)
		if forceTest && !strings.Contains(v, TestHost) && alternate != "" {
			primary, alternate = alternate, v
		}
		add(primary)
		add(alternate)
	}
	return out
}

// encodingVariants returns the given URL plus its sibling encoding forms:
// the other-cased json segment and the segment-free form, or both json
// segments when the operation sits directly under the service root.
func encodingVariants(u string) []string {
	const op = "/" + operationName
	switch {
	case strings.HasSuffix(u, "/json"+op):
		root := strings.TrimSuffix(u, "/json"+op)
		return []string{u, root + "/Json" + op, root + op}
	case strings.HasSuffix(u, "/Json"+op):
		root := strings.TrimSuffix(u, "/Json"+op)
		return []string{u, root + "/json" + op, root + op}
	default:
		root := strings.TrimSuffix(u, op)
		return []string{u, root + "/json" + op, root + "/Json" + op}
	}
}

// swapHost flips between the known production and test hosts. URLs on any
// other host have no environment sibling.
func swapHost(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch parsed.Host {
	case ProdHost:
		parsed.Host = TestHost
	case TestHost:
		parsed.Host = ProdHost
	default:
		return ""
	}
	return parsed.String()
}

// ServiceRoot strips the JSON operation suffix from a candidate, yielding
// the URL the SOAP envelope is posted to.
func ServiceRoot(candidate string) string {
	const op = "/" + operationName
	for _, suffix := range []string{"/json" + op, "/Json" + op, op} {
		if strings.HasSuffix(candidate, suffix) {
			return strings.TrimSuffix(candidate, suffix)
		}
	}
	return candidate
}

func serviceRoots(candidates []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, c := range candidates {
		root := ServiceRoot(c)
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		out = append(out, root)
	}
	return out
}

// collapseSlashes removes duplicate path slashes while keeping the scheme
// separator intact.
func collapseSlashes(u string) string {
	scheme := ""
	rest := u
	if i := strings.Index(u, "://"); i >= 0 {
		scheme, rest = u[:i+3], u[i+3:]
	}
	for strings.Contains(rest, "//") {
		rest = strings.ReplaceAll(rest, "//", "/")
	}
	return scheme + rest
}
