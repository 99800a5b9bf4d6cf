package gateway

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// The provider's SOAP documentation is ambiguous about both the body shape
// and the SOAPAction value, so each service root is tried with two body
// shapes crossed with three header variants, stopping at the first success.
type soapHeaders struct {
	contentType string
	action      string // empty means no SOAPAction header at all
}

var soapHeaderVariants = []soapHeaders{
	{contentType: "text/xml; charset=utf-8", action: `"http://tempuri.org/IPaymentService/PaymentRequest"`},
	{contentType: "text/xml; charset=utf-8", action: `"http://tempuri.org/PaymentRequest"`},
	{contentType: "text/xml; charset=utf-8"},
}

func (c *Client) trySOAP(ctx context.Context, req Request, candidates []string) (*PaymentResult, error) {
	roots := serviceRoots(candidates)
	envelopes := []string{
		BuildEnvelope(req, true),
		BuildEnvelope(req, false),
	}

	var lastErr error
	for _, root := range roots {
		for _, env := range envelopes {
			for _, hdr := range soapHeaderVariants {
				r := c.soap.Request().
					SetContext(ctx).
					SetHeader("Content-Type", hdr.contentType).
					SetBody(env)
				if hdr.action != "" {
					r.SetHeader("SOAPAction", hdr.action)
				}

				resp, err := r.Post(root)
				if err != nil {
					// Some HTTP clients report a blocked redirect as an
					// error with the response still attached; the redirect
					// target is the success signal, so check before giving
					// up on this attempt.
					if u := redirectTarget(resp); u != "" {
						return c.soapResult(u, root, resp), nil
					}
					lastErr = err
					continue
				}

				status := resp.StatusCode()
				if status >= 300 && status < 400 {
					if u := redirectTarget(resp); u != "" {
						return c.soapResult(u, root, resp), nil
					}
				}
				if status >= 200 && status < 300 {
					// last-resort extraction: any https URL embedded in the
					// raw XML body
					if u := fromRawScan(resp.Body()); IsHTTPURL(u) {
						return c.soapResult(u, root, resp), nil
					}
				}
				lastErr = fmt.Errorf("soap attempt on %s answered %d", root, status)
			}
		}
	}
	return nil, &ExhaustedError{Transport: TransportSOAP, Last: lastErr}
}

func (c *Client) soapResult(paymentURL, root string, resp *resty.Response) *PaymentResult {
	c.logger.Info("gateway payment url obtained",
		zap.String("candidate", root), zap.String("transport", TransportSOAP))
	body := ""
	if resp != nil && resp.RawResponse != nil {
		body = string(resp.Body())
	}
	return &PaymentResult{
		PaymentURL: paymentURL,
		Candidate:  root,
		Transport:  TransportSOAP,
		RawBody:    body,
	}
}

func redirectTarget(resp *resty.Response) string {
	if resp == nil || resp.RawResponse == nil {
		return ""
	}
	loc := resp.Header().Get("Location")
	if IsHTTPURL(loc) {
		return loc
	}
	return ""
}

// BuildEnvelope serializes the request into a SOAP 1.1 envelope. With
// wrapped=true the fields sit inside an inner <request> element, otherwise
// directly under the operation element.
func BuildEnvelope(req Request, wrapped bool) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	b.WriteString(`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>`)
	b.WriteString(`<` + operationName + ` xmlns="http://tempuri.org/">`)
	if wrapped {
		b.WriteString("<request>")
	}
	writeEnvelopeFields(&b, req)
	if wrapped {
		b.WriteString("</request>")
	}
	b.WriteString(`</` + operationName + `></soap:Body></soap:Envelope>`)
	return b.String()
}

func writeEnvelopeFields(b *strings.Builder, req Request) {
	for _, f := range req.wireFields() {
		writeLeaf(b, f.Key, fmt.Sprintf("%v", f.Value))
	}
	if len(req.Items) == 0 {
		return
	}
	b.WriteString("<items>")
	for _, it := range req.Items {
		b.WriteString("<item>")
		writeLeaf(b, "description", it.Description)
		if it.SKU != "" {
			writeLeaf(b, "sku", it.SKU)
		}
		writeLeaf(b, "quantity", fmt.Sprintf("%v", it.Quantity))
		writeLeaf(b, "price", fmt.Sprintf("%v", it.UnitPrice))
		b.WriteString("</item>")
	}
	b.WriteString("</items>")
}

func writeLeaf(b *strings.Builder, name, value string) {
	b.WriteString("<" + name + ">")
	_ = xml.EscapeText(b, []byte(value))
	b.WriteString("</" + name + ">")
}
