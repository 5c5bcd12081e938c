package transport

import (
	"bytes"
	"encoding/json"
	"strings"
)

// exchange is what the classifiers see of a completed HTTP round trip.
type exchange struct {
	status      int
	statusText  string
	contentType string
	body        []byte
}

func (x exchange) isJSON() bool {
	return len(bytes.TrimSpace(x.body)) > 0 && json.Valid(x.body)
}

func (x exchange) lowerBody() string {
	return strings.ToLower(string(x.body))
}

// shortTextLimit bounds plain-text error bodies that are shown to the user verbatim.
const shortTextLimit = 200

// errorMessageFields are probed in order on JSON error bodies.
var errorMessageFields = []string{"msg", "error", "message", "detail"}

// Markers that only appear on tunnel interstitial or tunnel error pages.
var tunnelMarkers = []string{
	"ngrok-skip-browser-warning",
	"err_ngrok_",
	"bypass-tunnel-reminder",
}

// Weaker markers, trusted only inside an HTML document.
var tunnelPageMarkers = []string{
	"ngrok",
	"localtunnel",
}

func looksLikeHTML(lower string) bool {
	return strings.Contains(lower, "<!doctype html") || strings.Contains(lower, "<html")
}

// failureClassifier inspects a failed exchange; ok reports whether it matched.
type failureClassifier func(x exchange) (err *Error, ok bool)

// Earlier classifiers pre-empt later, more generic ones.
var failureChain = []failureClassifier{
	jsonErrorMessage,
	tunnelInterstitial,
	shortPlainText,
}

func classifyFailure(x exchange) *Error {
	for _, classify := range failureChain {
		if err, ok := classify(x); ok {
			return err
		}
	}
	return fail(kindForStatus(x.status), x.status, statusFallback(x.status, x.statusText))
}

func jsonErrorMessage(x exchange) (*Error, bool) {
	if !x.isJSON() {
		return nil, false
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(x.body, &fields); err != nil {
		return nil, false
	}
	for _, name := range errorMessageFields {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		msg, ok := messageFromRaw(raw)
		if !ok {
			continue
		}
		return fail(kindForStatus(x.status), x.status, msg), true
	}
	return nil, false
}

// messageFromRaw returns string values verbatim and compacts anything else.
func messageFromRaw(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		if s == "" {
			return "", false
		}
		return s, true
	}
	buf := bytes.Buffer{}
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed), true
	}
	return buf.String(), true
}

func tunnelInterstitial(x exchange) (*Error, bool) {
	if x.isJSON() {
		return nil, false
	}
	lower := x.lowerBody()
	for _, marker := range tunnelMarkers {
		if strings.Contains(lower, marker) {
			return fail(KindTunnelBlocked, x.status, msgTunnel), true
		}
	}
	if !looksLikeHTML(lower) {
		return nil, false
	}
	for _, marker := range tunnelPageMarkers {
		if strings.Contains(lower, marker) {
			return fail(KindTunnelBlocked, x.status, msgTunnel), true
		}
	}
	return nil, false
}

func shortPlainText(x exchange) (*Error, bool) {
	if x.isJSON() || len(x.body) >= shortTextLimit {
		return nil, false
	}
	text := strings.TrimSpace(string(x.body))
	if text == "" || looksLikeHTML(strings.ToLower(text)) {
		return nil, false
	}
	return fail(kindForStatus(x.status), x.status, text), true
}

// successClassifier handles a 2xx exchange, decoding into out when it matches.
type successClassifier func(x exchange, out any) (matched bool, err error)

var successChain = []successClassifier{
	emptyBody,
	jsonBody,
	tunnelOnSuccess,
	htmlDocument,
}

func classifySuccess(x exchange, out any) error {
	for _, classify := range successChain {
		if matched, err := classify(x, out); matched {
			return err
		}
	}
	if strings.Contains(strings.ToLower(x.contentType), "json") {
		return fail(KindMalformedResponse, x.status, msgInvalidBody+" (declared "+x.contentType+")")
	}
	return fail(KindMalformedResponse, x.status, msgInvalidBody)
}

func emptyBody(x exchange, _ any) (bool, error) {
	return len(bytes.TrimSpace(x.body)) == 0, nil
}

// jsonBody accepts JSON whether or not the server declared it.
func jsonBody(x exchange, out any) (bool, error) {
	if !x.isJSON() {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := json.Unmarshal(x.body, out); err != nil {
		return true, failWrap(KindMalformedResponse, x.status, msgInvalidBody+": "+err.Error(), err)
	}
	return true, nil
}

func tunnelOnSuccess(x exchange, _ any) (bool, error) {
	if terr, ok := tunnelInterstitial(x); ok {
		return true, terr
	}
	return false, nil
}

func htmlDocument(x exchange, _ any) (bool, error) {
	if looksLikeHTML(x.lowerBody()) {
		return true, fail(KindMalformedResponse, x.status, msgHTMLBody)
	}
	return false, nil
}
