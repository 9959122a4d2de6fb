package igdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type countingLimiter struct {
	waits int
}

func (l *countingLimiter) Wait(ctx context.Context) error {
	l.waits++
	return ctx.Err()
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), ClientConfig{})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}

	_, err = NewClient(context.Background(), ClientConfig{ClientID: "client"})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials without secret or token, got %v", err)
	}
}

func TestNewClientExchangesToken(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-123"}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		TokenURL:     server.URL,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.accessToken != "tok-123" {
		t.Fatalf("expected exchanged token, got %q", client.accessToken)
	}
	for _, part := range []string{"client_id=client", "client_secret=secret", "grant_type=client_credentials"} {
		if !strings.Contains(gotQuery, part) {
			t.Fatalf("expected token query to contain %q, got %q", part, gotQuery)
		}
	}
}

func TestNewClientSkipsExchangeWithToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("token endpoint should not be called")
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientConfig{
		ClientID:    "client",
		AccessToken: "pre-supplied",
		TokenURL:    server.URL,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.accessToken != "pre-supplied" {
		t.Fatalf("expected pre-supplied token, got %q", client.accessToken)
	}
}

func TestNewClientFailsOnTokenStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewClient(context.Background(), ClientConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		TokenURL:     server.URL,
	})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %v", err)
	}
	if authErr.Status != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", authErr.Status)
	}
}

func TestNewClientFailsOnMalformedTokenBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	_, err := NewClient(context.Background(), ClientConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		TokenURL:     server.URL,
	})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %v", err)
	}
}

func newTestClient(t *testing.T, apiURL string, limiter Limiter) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), ClientConfig{
		ClientID:    "client",
		AccessToken: "tok",
		APIBaseURL:  apiURL,
		Limiter:     limiter,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestFetchSendsHeadersAndBody(t *testing.T) {
	var gotPath, gotBody, gotClientID, gotAuth, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		gotClientID = r.Header.Get("Client-ID")
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`[{"id":71}]`))
	}))
	defer server.Close()

	limiter := &countingLimiter{}
	client := newTestClient(t, server.URL, limiter)

	records, err := client.Fetch(context.Background(), "games", "fields id; where id=(71);")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if gotPath != "/games" {
		t.Fatalf("expected path /games, got %q", gotPath)
	}
	if gotBody != "fields id; where id=(71);" {
		t.Fatalf("unexpected body: %q", gotBody)
	}
	if gotClientID != "client" || gotAuth != "Bearer tok" || gotAccept != "application/json" {
		t.Fatalf("unexpected headers: Client-ID=%q Authorization=%q Accept=%q", gotClientID, gotAuth, gotAccept)
	}
	if limiter.waits != 1 {
		t.Fatalf("expected 1 limiter wait, got %d", limiter.waits)
	}
}

func TestFetchReturnsAPIErrorOnStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad query", http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &countingLimiter{})

	_, err := client.Fetch(context.Background(), "games", "fields id; where id=(1);")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", apiErr.Status)
	}
	if apiErr.Endpoint != "games" || apiErr.RequestBody != "fields id; where id=(1);" {
		t.Fatalf("expected diagnostic context, got %+v", apiErr)
	}
}

func TestFetchReturnsDecodeErrorOnBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &countingLimiter{})

	_, err := client.Fetch(context.Background(), "genres", "fields id;")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	if decodeErr.Endpoint != "genres" || decodeErr.Response == "" {
		t.Fatalf("expected diagnostic context, got %+v", decodeErr)
	}
}

func TestFetchDoesNotRetryTransportFailure(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("hijack unsupported")
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Fatalf("hijack: %v", err)
		}
		conn.Close()
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &countingLimiter{})

	if _, err := client.Fetch(context.Background(), "games", "fields id;"); err == nil {
		t.Fatal("expected transport error")
	}
	if attempts != 1 {
		t.Fatalf("expected single attempt, got %d", attempts)
	}
}

func TestSearchGamesBuildsSearchQuery(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(`[{"id":71,"name":"Portal","slug":"portal","url":"u"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &countingLimiter{})

	games, err := client.SearchGames(context.Background(), "Portal")
	if err != nil {
		t.Fatalf("search games: %v", err)
	}
	if len(games) != 1 || games[0].Name != "Portal" {
		t.Fatalf("unexpected results: %+v", games)
	}
	if !strings.Contains(gotBody, `search "Portal";`) {
		t.Fatalf("expected search clause in body, got %q", gotBody)
	}
}

