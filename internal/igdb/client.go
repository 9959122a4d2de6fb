// Package igdb fetches game metadata from the IGDB v4 API, batching requests
// by id list and caching every fetched record in a durable store.
package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultAPIBaseURL = "https://api.igdb.com/v4"
	defaultTokenURL   = "https://id.twitch.tv/oauth2/token"
)

var tracer = otel.Tracer("github.com/louisbranch/game-reviews/internal/igdb")

// ClientConfig configures an IGDB API client.
type ClientConfig struct {
	// ClientID is the Twitch application client id, sent with every request.
	ClientID string
	// ClientSecret is exchanged for a bearer token when AccessToken is empty.
	ClientSecret string
	// AccessToken skips the token exchange when pre-supplied.
	AccessToken string

	// APIBaseURL and TokenURL override the production endpoints in tests.
	APIBaseURL string
	TokenURL   string

	// HTTPClient defaults to http.DefaultClient. No request timeout is
	// enforced beyond what the transport provides.
	HTTPClient *http.Client
	// Limiter defaults to a process-wide token bucket at
	// DefaultRequestsPerSecond.
	Limiter Limiter
}

// Client issues authenticated bulk requests against IGDB endpoints. The
// bearer token is obtained once at construction and lives for the process;
// expiry is not handled because generation is one-shot.
type Client struct {
	httpClient  *http.Client
	apiBaseURL  string
	clientID    string
	accessToken string
	limiter     Limiter
}

// NewClient authenticates against Twitch and returns a ready client.
// Authentication failure is fatal: a client without a token is unusable.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		return nil, ErrMissingCredentials
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = NewLimiter(DefaultRequestsPerSecond)
	}
	apiBaseURL := strings.TrimRight(cfg.APIBaseURL, "/")
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		secret := strings.TrimSpace(cfg.ClientSecret)
		if secret == "" {
			return nil, ErrMissingCredentials
		}
		token, err := exchangeToken(ctx, httpClient, tokenURL, clientID, secret)
		if err != nil {
			return nil, err
		}
		accessToken = token
	} else {
		log.Printf("igdb: using pre-supplied access token")
	}

	return &Client{
		httpClient:  httpClient,
		apiBaseURL:  apiBaseURL,
		clientID:    clientID,
		accessToken: accessToken,
		limiter:     limiter,
	}, nil
}

// exchangeToken performs the Twitch client-credentials grant. Credentials go
// in the query string, matching the Twitch endpoint contract.
func exchangeToken(ctx context.Context, httpClient *http.Client, tokenURL, clientID, clientSecret string) (string, error) {
	query := url.Values{}
	query.Set("client_id", clientID)
	query.Set("client_secret", clientSecret)
	query.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("igdb: build token request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("igdb: token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("igdb: read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &AuthError{Status: resp.StatusCode, Body: string(body), Err: err}
	}
	if payload.AccessToken == "" {
		return "", &AuthError{Status: resp.StatusCode, Body: string(body), Err: fmt.Errorf("missing access_token field")}
	}
	return payload.AccessToken, nil
}

// Fetch issues one rate-limited POST with an apicalypse query body against an
// endpoint and decodes the JSON array response. Exactly one attempt is made;
// callers retry if they want retries.
func (c *Client) Fetch(ctx context.Context, endpoint, body string) ([]json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "igdb.fetch", trace.WithAttributes(
		attribute.String("igdb.endpoint", endpoint),
	))
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("igdb: wait for request slot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/"+endpoint, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("igdb: build %s request: %w", endpoint, err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("igdb: %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("igdb: read %s response: %w", endpoint, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Endpoint: endpoint, RequestBody: body, Status: resp.StatusCode, Response: string(respBody)}
		span.RecordError(apiErr)
		return nil, apiErr
	}

	var records []json.RawMessage
	if err := json.Unmarshal(respBody, &records); err != nil {
		decodeErr := &DecodeError{Endpoint: endpoint, RequestBody: body, Response: string(respBody), Err: err}
		// Logged loudly: an undecodable body usually means the API contract
		// changed, not a transient failure.
		log.Printf("igdb: ERROR invalid json from %s (query %q): %v; response: %s", endpoint, body, err, respBody)
		span.RecordError(decodeErr)
		return nil, decodeErr
	}
	return records, nil
}

// SearchGames queries games by title. It exists to backfill IGDB ids for
// reviews that predate the metadata join; results are not cached because
// search has no id-batch cache key.
func (c *Client) SearchGames(ctx context.Context, title string) ([]Game, error) {
	body := fmt.Sprintf("search %q; fields %s;", title, gameFields)
	raw, err := c.Fetch(ctx, EndpointGames, body)
	if err != nil {
		return nil, err
	}

	games := make([]Game, 0, len(raw))
	for _, item := range raw {
		var game Game
		if err := json.Unmarshal(item, &game); err != nil {
			return nil, &DecodeError{Endpoint: EndpointGames, RequestBody: body, Response: string(item), Err: err}
		}
		games = append(games, game)
	}
	return games, nil
}
