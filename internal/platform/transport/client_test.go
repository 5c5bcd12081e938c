package transport_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"medibill/internal/platform/transport"
)

type fixedID struct{}

func (fixedID) New() string { return "req-1" }

func newClient(t *testing.T, h http.HandlerFunc) (*transport.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return transport.New(transport.Options{BaseURL: srv.URL + "/ ", IDs: fixedID{}}), srv
}

func respond(status int, contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func asTransportError(t *testing.T, err error) *transport.Error {
	t.Helper()
	var terr *transport.Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *transport.Error, got %T (%v)", err, err)
	}
	return terr
}

const ngrokInterstitial = `<!DOCTYPE html><html><head><title>ngrok</title></head><body>
<p>You are about to visit abc.ngrok-free.app. To remove this page, set the ngrok-skip-browser-warning request header.</p>
</body></html>`

const localtunnelReminder = `<!DOCTYPE html><html><body><h1>Friendly Reminder</h1>
<p>Set a Bypass-Tunnel-Reminder header to skip this page.</p></body></html>`

func TestDoAttachesHeadersAndNormalizesPath(t *testing.T) {
	t.Parallel()
	var got http.Header
	var gotPath string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"profile":{"user_id":7,"username":"asha"}}`)
	})

	var out struct {
		Profile struct {
			UserID   int    `json:"user_id"`
			Username string `json:"username"`
		} `json:"profile"`
	}
	err := client.Do(context.Background(), transport.Request{
		Path:          "profile",
		Token:         "tok",
		Authenticated: true,
		Headers:       map[string]string{"X-Extra": "1"},
	}, &out)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if gotPath != "/profile" {
		t.Fatalf("expected /profile, got %s", gotPath)
	}
	want := map[string]string{
		"Accept":                     "application/json",
		"Ngrok-Skip-Browser-Warning": "true",
		"Bypass-Tunnel-Reminder":     "true",
		"Authorization":              "Bearer tok",
		"X-Request-Id":               "req-1",
		"X-Extra":                    "1",
	}
	for k, v := range want {
		if got.Get(k) != v {
			t.Fatalf("header %s: expected %q, got %q", k, v, got.Get(k))
		}
	}
	if out.Profile.UserID != 7 || out.Profile.Username != "asha" {
		t.Fatalf("unexpected decoded body: %+v", out)
	}
}

func TestAuthRequiredNeverReachesNetwork(t *testing.T) {
	t.Parallel()
	var hits int32
	client, _ := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
	})
	err := client.Do(context.Background(), transport.Request{Path: "/profile", Authenticated: true, Token: "  "}, nil)
	if transport.KindOf(err) != transport.KindAuthRequired {
		t.Fatalf("expected auth required, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("request must not be sent without a token")
	}
}

func TestFailureJSONMessageFieldsAreExtractedExactly(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		status int
		body   string
		kind   transport.Kind
		msg    string
	}{
		{"msg", 400, `{"msg":"Bad username or password"}`, transport.KindServerError, "Bad username or password"},
		{"error", 500, `{"error":"OCR engine crashed"}`, transport.KindServerError, "OCR engine crashed"},
		{"message", 404, `{"message":"No such file"}`, transport.KindNotFound, "No such file"},
		{"detail string", 422, `{"detail":"force_ocr must be boolean"}`, transport.KindServerError, "force_ocr must be boolean"},
		{"detail object", 422, `{"detail": [ {"loc": ["file"], "msg": "field required"} ]}`, transport.KindServerError, `[{"loc":["file"],"msg":"field required"}]`},
		{"msg wins over error", 409, `{"error":"second","msg":"first"}`, transport.KindServerError, "first"},
		{"empty msg skipped", 400, `{"msg":"","error":"fallback field"}`, transport.KindServerError, "fallback field"},
		{"token expired", 401, `{"msg":"Token has expired"}`, transport.KindAuthRejected, "Token has expired"},
		{"unicode preserved", 500, `{"message":"  spaced é text  "}`, transport.KindServerError, "  spaced é text  "},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client, _ := newClient(t, respond(tc.status, "application/json", tc.body))
			terr := asTransportError(t, client.Do(context.Background(), transport.Request{Path: "/x"}, nil))
			if terr.Kind != tc.kind || terr.Status != tc.status {
				t.Fatalf("expected kind %s status %d, got %s %d", tc.kind, tc.status, terr.Kind, terr.Status)
			}
			if terr.Message != tc.msg {
				t.Fatalf("expected message %q, got %q", tc.msg, terr.Message)
			}
		})
	}
}

func TestFailureFallsBackToShortTextThenStatusLine(t *testing.T) {
	t.Parallel()
	client, _ := newClient(t, respond(http.StatusServiceUnavailable, "text/plain", "upstream is warming up\n"))
	terr := asTransportError(t, client.Do(context.Background(), transport.Request{Path: "/x"}, nil))
	if terr.Message != "upstream is warming up" || terr.Kind != transport.KindServerError || terr.Status != 503 {
		t.Fatalf("unexpected short text failure: %+v", terr)
	}

	long := strings.Repeat("x", 250)
	client, _ = newClient(t, respond(http.StatusBadGateway, "text/plain", long))
	terr = asTransportError(t, client.Do(context.Background(), transport.Request{Path: "/x"}, nil))
	if terr.Message != "Error 502: Bad Gateway" {
		t.Fatalf("long text must fall back to the status line, got %q", terr.Message)
	}

	client, _ = newClient(t, respond(http.StatusInternalServerError, "text/html", "<!DOCTYPE html><html><body>Internal</body></html>"))
	terr = asTransportError(t, client.Do(context.Background(), transport.Request{Path: "/x"}, nil))
	if terr.Message != "Error 500: Internal Server Error" {
		t.Fatalf("html error page must fall back to the status line, got %q", terr.Message)
	}

	client, _ = newClient(t, respond(http.StatusNotFound, "", ""))
	terr = asTransportError(t, client.Do(context.Background(), transport.Request{Path: "/x"}, nil))
	if terr.Kind != transport.KindNotFound || terr.Message != "Error 404: Not Found" {
		t.Fatalf("empty 404 body: %+v", terr)
	}

	client, _ = newClient(t, respond(http.StatusBadRequest, "application/json", `{"unrelated":true}`))
	terr = asTransportError(t, client.Do(context.Background(), transport.Request{Path: "/x"}, nil))
	if terr.Message != "Error 400: Bad Request" {
		t.Fatalf("json without known fields must fall back to the status line, got %q", terr.Message)
	}
}

func TestTunnelSignatureWinsRegardlessOfStatus(t *testing.T) {
	t.Parallel()
	bodies := []string{
		ngrokInterstitial,
		localtunnelReminder,
		"ERR_NGROK_3200: tunnel abc.ngrok-free.app not found",
		"<html><body>Served by localtunnel</body></html>",
	}
	statuses := []int{200, 201, 204, 401, 404, 502, 504}
	for _, body := range bodies {
		for _, status := range statuses {
			if status == http.StatusNoContent {
				// A 204 carries no body on the wire.
				continue
			}
			client, _ := newClient(t, respond(status, "text/html", body))
			err := client.Do(context.Background(), transport.Request{Path: "/x"}, &map[string]any{})
			terr := asTransportError(t, err)
			if terr.Kind != transport.KindTunnelBlocked {
				t.Fatalf("status %d body %.30q: expected tunnel blocked, got %s (%s)", status, body, terr.Kind, terr.Message)
			}
			if terr.Status != status {
				t.Fatalf("expected status %d to be kept, got %d", status, terr.Status)
			}
		}
	}
}

func TestSuccessJSONIsAcceptedEvenWhenUndeclared(t *testing.T) {
	t.Parallel()
	for _, ct := range []string{"application/json; charset=utf-8", "text/plain", ""} {
		client, _ := newClient(t, respond(http.StatusOK, ct, `{"access_token":"abc","username":"asha"}`))
		var out struct {
			AccessToken string `json:"access_token"`
		}
		if err := client.Do(context.Background(), transport.Request{Method: http.MethodPost, Path: "/login"}, &out); err != nil {
			t.Fatalf("content type %q: %v", ct, err)
		}
		if out.AccessToken != "abc" {
			t.Fatalf("content type %q: body not decoded", ct)
		}
	}
}

func TestSuccessEmptyBodyIsEmptyResult(t *testing.T) {
	t.Parallel()
	client, _ := newClient(t, respond(http.StatusNoContent, "", ""))
	out := map[string]any{"untouched": true}
	if err := client.Do(context.Background(), transport.Request{Path: "/x"}, &out); err != nil {
		t.Fatalf("204: %v", err)
	}
	if len(out) != 1 || out["untouched"] != true {
		t.Fatalf("empty result must leave the target untouched: %v", out)
	}
}

func TestSuccessHTMLIsMalformedNeverSuccess(t *testing.T) {
	t.Parallel()
	pages := []string{
		"<!DOCTYPE html><html><body>Dashboard</body></html>",
		"<!doctype html>\n<html lang=\"en\"><head></head><body>SPA shell</body></html>",
		"  <html><body>Welcome to nginx!</body></html>",
	}
	for _, ct := range []string{"text/html", "application/json", ""} {
		for _, page := range pages {
			client, _ := newClient(t, respond(http.StatusOK, ct, page))
			terr := asTransportError(t, client.Do(context.Background(), transport.Request{Path: "/x"}, &map[string]any{}))
			if terr.Kind != transport.KindMalformedResponse {
				t.Fatalf("content type %q: expected malformed response, got %s", ct, terr.Kind)
			}
			if !strings.Contains(terr.Message, "HTML instead of JSON") {
				t.Fatalf("message must point at an HTML page, got %q", terr.Message)
			}
		}
	}
}

func TestSuccessGarbageAndTypeMismatchAreMalformed(t *testing.T) {
	t.Parallel()
	client, _ := newClient(t, respond(http.StatusOK, "text/plain", "OK"))
	if kind := transport.KindOf(client.Do(context.Background(), transport.Request{Path: "/x"}, &map[string]any{})); kind != transport.KindMalformedResponse {
		t.Fatalf("plain text success: expected malformed, got %s", kind)
	}

	client, _ = newClient(t, respond(http.StatusOK, "application/json", `{"profile":"not-an-object"}`))
	var out struct {
		Profile struct{ Username string } `json:"profile"`
	}
	terr := asTransportError(t, client.Do(context.Background(), transport.Request{Path: "/x"}, &out))
	if terr.Kind != transport.KindMalformedResponse || terr.Unwrap() == nil {
		t.Fatalf("type mismatch: expected wrapped malformed response, got %+v", terr)
	}
}

func TestNetworkFailureIsDistinctFromApplicationErrors(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := transport.New(transport.Options{BaseURL: base})
	terr := asTransportError(t, client.Do(context.Background(), transport.Request{Path: "/profile"}, nil))
	if terr.Kind != transport.KindNetworkUnreachable || terr.Status != 0 {
		t.Fatalf("expected network unreachable, got %+v", terr)
	}
	if !strings.HasPrefix(terr.Message, "Network Error") {
		t.Fatalf("unexpected network message %q", terr.Message)
	}
}

func TestCanceledContextIsUnknown(t *testing.T) {
	t.Parallel()
	client, _ := newClient(t, respond(http.StatusOK, "application/json", `{}`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.Do(ctx, transport.Request{Path: "/x"}, nil)
	if transport.KindOf(err) != transport.KindUnknown || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected unknown wrapping context.Canceled, got %v", err)
	}
}

func TestResponseLimitIsEnforced(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(respond(http.StatusOK, "application/json", fmt.Sprintf(`{"raw_text":%q}`, strings.Repeat("a", 64))))
	t.Cleanup(srv.Close)
	client := transport.New(transport.Options{BaseURL: srv.URL, MaxResponseBytes: 16})
	if kind := transport.KindOf(client.Do(context.Background(), transport.Request{Path: "/x"}, nil)); kind != transport.KindMalformedResponse {
		t.Fatalf("expected oversized body to be malformed, got %s", kind)
	}
}

func TestMultipartBodyRoundTrip(t *testing.T) {
	t.Parallel()
	var gotField, gotFile, gotName string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotField = r.FormValue("force_ocr")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		raw, _ := io.ReadAll(f)
		gotFile, gotName = string(raw), hdr.Filename
		w.WriteHeader(http.StatusNoContent)
	})

	body, ct, err := transport.NewMultipartBody(map[string]string{"force_ocr": "true"}, transport.FilePart{
		Field: "file", FileName: "bill.png", Content: strings.NewReader("png-bytes"),
	})
	if err != nil {
		t.Fatalf("build multipart: %v", err)
	}
	if err := client.Do(context.Background(), transport.Request{Method: http.MethodPost, Path: "/upload", Body: body, ContentType: ct}, nil); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if gotField != "true" || gotFile != "png-bytes" || gotName != "bill.png" {
		t.Fatalf("unexpected multipart payload: %q %q %q", gotField, gotFile, gotName)
	}
}

func TestKindOfForeignErrorIsUnknown(t *testing.T) {
	t.Parallel()
	if transport.KindOf(errors.New("boom")) != transport.KindUnknown {
		t.Fatalf("foreign errors must classify as unknown")
	}
	wrapped := fmt.Errorf("profile: %w", &transport.Error{Kind: transport.KindAuthRejected, Status: 401, Message: "expired"})
	if !transport.IsAuthRejected(wrapped) {
		t.Fatalf("wrapped auth rejection must be detected")
	}
}
