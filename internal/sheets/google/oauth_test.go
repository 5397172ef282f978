package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

const testClientJSON = `{"installed":{
	"client_id":"cid",
	"client_secret":"secret",
	"redirect_uris":["http://localhost"],
	"auth_uri":"https://accounts.google.com/o/oauth2/auth",
	"token_uri":"https://oauth2.googleapis.com/token"}}`

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "the-code" {
			http.Error(w, "bad code", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"Bearer","refresh_token":"r1","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// follow plays the browser: it calls the redirect with the given code and
// state, or with the state from the consent URL when state is empty.
func follow(t *testing.T, code, state string) func(string) {
	return func(consent string) {
		u, err := url.Parse(consent)
		if err != nil {
			t.Errorf("parse consent url: %v", err)
			return
		}
		q := u.Query()
		if state == "" {
			state = q.Get("state")
		}
		if q.Get("access_type") != "offline" {
			t.Errorf("access_type = %q", q.Get("access_type"))
		}
		redirect := q.Get("redirect_uri") + "?" + url.Values{"code": {code}, "state": {state}}.Encode()
		go func() {
			resp, err := http.Get(redirect)
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
}

func testOAuthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{AuthURL: "https://accounts.example/auth", TokenURL: tokenURL},
		Scopes:       []string{"scope"},
	}
}

func TestAuthorize(t *testing.T) {
	tokens := newTokenServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tok, err := Authorize(ctx, testOAuthConfig(tokens.URL), "127.0.0.1:0", follow(t, "the-code", ""))
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if tok.AccessToken != "abc" || tok.RefreshToken != "r1" {
		t.Fatalf("token = %+v", tok)
	}
}

func TestAuthorizeRejectsStateMismatch(t *testing.T) {
	tokens := newTokenServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Authorize(ctx, testOAuthConfig(tokens.URL), "127.0.0.1:0", follow(t, "the-code", "forged"))
	if err == nil || !strings.Contains(err.Error(), "state mismatch") {
		t.Fatalf("expected state mismatch, got %v", err)
	}
}

func TestAuthorizeHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, err := Authorize(ctx, testOAuthConfig("http://127.0.0.1:1/token"), "127.0.0.1:0", func(string) { cancel() })
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	want := &oauth2.Token{AccessToken: "abc", RefreshToken: "r1", TokenType: "Bearer"}
	if err := SaveToken(path, want); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("token file mode = %v", info.Mode().Perm())
	}
	got, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if got.AccessToken != "abc" || got.RefreshToken != "r1" {
		t.Fatalf("token = %+v", got)
	}

	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(empty, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadToken(empty); err == nil {
		t.Fatalf("expected error for an empty token")
	}
}

func TestNewWithOAuthToken(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token.json")
	if err := SaveToken(tokenFile, &oauth2.Token{AccessToken: "abc", RefreshToken: "r1"}); err != nil {
		t.Fatal(err)
	}

	c, err := New(context.Background(), Options{
		SpreadsheetID:   "sid",
		OAuthClientJSON: testClientJSON,
		OAuthTokenFile:  tokenFile,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.sheetBase != "Bilans" {
		t.Fatalf("sheetBase = %q", c.sheetBase)
	}

	_, err = New(context.Background(), Options{
		SpreadsheetID:   "sid",
		OAuthClientFile: filepath.Join(dir, "missing.json"),
		OAuthTokenFile:  tokenFile,
	})
	if err == nil || !strings.Contains(err.Error(), "oauth client file") {
		t.Fatalf("expected missing client file error, got %v", err)
	}
}
