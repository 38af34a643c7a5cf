package utils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	AuthPort       = 3000
	authTimeout    = 5 * time.Minute
	callbackPath   = "/oauth/callback"
	tokenDirName   = ".scheduler/tokens"
	tokenFilePerms = 0600 // Read/write for owner only
	tokenDirPerms  = 0700 // Read/write/execute for owner only
	tokenInfoURL   = "https://oauth2.googleapis.com/tokeninfo"
)

// Tokens obtained by the browser flow, by environment
var (
	sessionTokens   = make(map[string]*oauth2.Token)
	sessionTokensMu sync.Mutex
)

// ScopeSheets grants read and write access to spreadsheets
const ScopeSheets = "https://www.googleapis.com/auth/spreadsheets"

// requiredScopes returns all scopes required by the application
func requiredScopes() []string {
	return []string{ScopeSheets}
}

// Kinds of credentials file understood by TokenSource
const (
	credentialsServiceAccount = "service_account"
	credentialsAuthorizedUser = "authorized_user"
	credentialsOAuthClient    = "oauth_client"
)

// credentialsKind inspects a Google credentials JSON file
func credentialsKind(data []byte) (string, error) {
	var envelope struct {
		Type      string          `json:"type"`
		Installed json.RawMessage `json:"installed"`
		Web       json.RawMessage `json:"web"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("failed to parse credentials file: %w", err)
	}

	switch {
	case envelope.Installed != nil || envelope.Web != nil:
		return credentialsOAuthClient, nil
	case envelope.Type == credentialsServiceAccount, envelope.Type == credentialsAuthorizedUser:
		return envelope.Type, nil
	case envelope.Type != "":
		return "", fmt.Errorf("unsupported credentials type %q", envelope.Type)
	}
	return "", fmt.Errorf("credentials file has neither a type nor an OAuth client section")
}

// TokenSource returns a token source for the Sheets API.
// An empty credentialsFile uses Application Default Credentials. A service
// account or authorized user file is used directly. An OAuth client file runs
// the browser flow, with tokens persisted to disk for the given environment.
func TokenSource(ctx context.Context, credentialsFile, env string) (oauth2.TokenSource, error) {
	if credentialsFile == "" {
		creds, err := google.FindDefaultCredentials(ctx, requiredScopes()...)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w", err)
		}
		return creds.TokenSource, nil
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	kind, err := credentialsKind(data)
	if err != nil {
		return nil, err
	}

	if kind != credentialsOAuthClient {
		creds, err := google.CredentialsFromJSON(ctx, data, requiredScopes()...)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s credentials: %w", kind, err)
		}
		return creds.TokenSource, nil
	}

	oauthConfig, err := GetOAuthConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth config: %w", err)
	}

	store, err := NewTokenStore(env)
	if err != nil {
		return nil, err
	}
	token, err := GetTokenWithFlow(ctx, oauthConfig, store)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth token: %w", err)
	}

	return oauthConfig.TokenSource(ctx, token), nil
}

// GetOAuthConfig creates an OAuth2 config from an OAuth client JSON file,
// redirecting to the local callback server
func GetOAuthConfig(oauthConfigJSON []byte) (*oauth2.Config, error) {
	cfg, err := google.ConfigFromJSON(oauthConfigJSON, requiredScopes()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create google config: %w", err)
	}
	cfg.RedirectURL = fmt.Sprintf("http://localhost:%d%s", AuthPort, callbackPath)
	return cfg, nil
}

// TokenStore persists one environment's OAuth token under the user's home
type TokenStore struct {
	env  string
	path string
}

// NewTokenStore returns the store of env's token file
func NewTokenStore(env string) (*TokenStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return &TokenStore{
		env:  env,
		path: filepath.Join(home, tokenDirName, fmt.Sprintf("token-%s.json", env)),
	}, nil
}

// Load returns the stored token, or nil when none has been saved
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// Save writes the token, readable by the owner only
func (s *TokenStore) Save(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), tokenDirPerms); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.WriteFile(s.path, data, tokenFilePerms); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Delete removes the token file; a missing file is not an error
func (s *TokenStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// missingScopes returns the required scopes absent from a space separated
// grant
func missingScopes(granted string) []string {
	have := strings.Fields(granted)
	var missing []string
	for _, scope := range requiredScopes() {
		if !slices.Contains(have, scope) {
			missing = append(missing, scope)
		}
	}
	return missing
}

// checkScopes asks Google's tokeninfo endpoint which scopes token carries
func checkScopes(ctx context.Context, token *oauth2.Token) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenInfoURL+"?access_token="+token.AccessToken, nil)
	if err != nil {
		return fmt.Errorf("failed to create tokeninfo request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call tokeninfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tokeninfo request failed with status %d: %s", resp.StatusCode, body)
	}

	var info struct {
		Scope string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}
	if missing := missingScopes(info.Scope); len(missing) > 0 {
		return fmt.Errorf("token is missing required scopes: %v", missing)
	}
	return nil
}

// GetTokenWithFlow returns a token for the store's environment: from this
// process, then from disk (refreshed when expired), then from the browser
// flow. Only one flow runs at a time.
func GetTokenWithFlow(ctx context.Context, oauthConfig *oauth2.Config, store *TokenStore) (*oauth2.Token, error) {
	sessionTokensMu.Lock()
	defer sessionTokensMu.Unlock()

	if token := sessionTokens[store.env]; token.Valid() {
		return token, nil
	}

	token, err := storedToken(ctx, oauthConfig, store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if token == nil {
		if token, err = authorize(ctx, oauthConfig); err != nil {
			return nil, err
		}
		if err := store.Save(token); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	sessionTokens[store.env] = token
	return token, nil
}

// storedToken returns the token on disk when it is usable and carries every
// required scope. A token that lacks scopes is deleted.
func storedToken(ctx context.Context, oauthConfig *oauth2.Config, store *TokenStore) (*oauth2.Token, error) {
	token, err := store.Load()
	if err != nil || token == nil {
		return nil, err
	}

	refreshed := false
	if !token.Valid() {
		if token.RefreshToken == "" {
			return nil, nil
		}
		fresh, err := oauthConfig.TokenSource(ctx, token).Token()
		if err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}
		token, refreshed = fresh, true
	}

	if err := checkScopes(ctx, token); err != nil {
		_ = store.Delete()
		return nil, fmt.Errorf("stored token discarded: %w", err)
	}
	if refreshed {
		if err := store.Save(token); err != nil {
			return token, err
		}
	}
	return token, nil
}

// authorize runs the browser consent flow and exchanges the returned code
func authorize(ctx context.Context, oauthConfig *oauth2.Config) (*oauth2.Token, error) {
	state, err := randomState()
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", AuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for oauth callback: %w", err)
	}

	fmt.Printf("\nVisit this URL to authorize the application:\n%s\n\n", oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline))

	code, err := awaitCallback(ctx, listener, state)
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization code: %w", err)
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	if err := checkScopes(ctx, token); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	return token, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// awaitCallback serves the redirect on listener until a code with the
// expected state arrives, ctx ends or authTimeout passes
func awaitCallback(ctx context.Context, listener net.Listener, state string) (string, error) {
	type callback struct {
		code string
		err  error
	}
	results := make(chan callback, 1)
	deliver := func(c callback) {
		select {
		case results <- c:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		switch {
		case query.Get("state") != state:
			http.Error(w, "Authorization failed: state mismatch", http.StatusBadRequest)
			deliver(callback{err: fmt.Errorf("oauth state mismatch")})
		case query.Get("code") == "":
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			deliver(callback{err: fmt.Errorf("no authorization code received: %s", query.Get("error"))})
		default:
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html><body><h1>Authorization successful!</h1><p>You can close this window and return to the scheduler.</p></body></html>")
			deliver(callback{code: query.Get("code")})
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			deliver(callback{err: fmt.Errorf("callback server error: %w", err)})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	select {
	case c := <-results:
		return c.code, c.err
	case <-timeout.C:
		return "", fmt.Errorf("authorization timeout after %v", authTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ClearToken forgets every token obtained in this process
func ClearToken() {
	sessionTokensMu.Lock()
	defer sessionTokensMu.Unlock()
	clear(sessionTokens)
}
