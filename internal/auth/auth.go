// package auth runs the Spotify authorization-code flow and caches the
// resulting token on disk.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"github.com/zetachan/encore/internal/shared"
	"golang.org/x/oauth2"
)

// Authenticator owns the OAuth flow: it spins up a localhost callback
// listener, opens the consent URL, exchanges the code, and persists the
// token to tokenPath for later sessions.
type Authenticator struct {
	auth      *spotifyauth.Authenticator
	tokenPath string
	redirect  string
	logger    *log.Logger
}

// NewAuthenticator builds an Authenticator from Spotify app credentials.
// redirectURI must point at a localhost port this process can bind.
func NewAuthenticator(clientID, clientSecret, redirectURI, tokenPath string, logger *log.Logger) (*Authenticator, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client id and secret are required", shared.ErrMissingConfig)
	}
	if logger == nil {
		logger = log.Default()
	}

	auth := spotifyauth.New(
		spotifyauth.WithRedirectURL(redirectURI),
		spotifyauth.WithClientID(clientID),
		spotifyauth.WithClientSecret(clientSecret),
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistModifyPublic,
			spotifyauth.ScopePlaylistModifyPrivate,
			spotifyauth.ScopeUserReadPrivate,
		),
	)
	return &Authenticator{
		auth:      auth,
		tokenPath: tokenPath,
		redirect:  redirectURI,
		logger:    logger,
	}, nil
}

// Login runs the interactive authorization flow. It blocks until the
// callback fires or ctx is canceled, then writes the token to disk and
// returns the consent URL the user was sent to.
func (a *Authenticator) Login(ctx context.Context) (*oauth2.Token, error) {
	state := shared.GenerateID()
	handler := newCallbackHandler(a.auth, state)

	addr, err := callbackAddr(a.redirect)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/callback", handler)
	server := &http.Server{Addr: addr, Handler: mux}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind callback listener on %s: %w", addr, err)
	}
	go server.Serve(listener)
	defer server.Shutdown(context.Background())

	authURL := a.auth.AuthURL(state)
	a.logger.Info("waiting for authorization", "url", authURL)
	fmt.Printf("Open this URL in your browser to authorize:\n\n  %s\n\n", authURL)

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
		}
		if err := a.saveToken(result.Token); err != nil {
			return nil, err
		}
		return result.Token, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Client returns an HTTP client authorized with the cached token. The
// oauth2 transport refreshes expired access tokens transparently using
// the stored refresh token.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	token, err := a.loadToken()
	if err != nil {
		return nil, err
	}
	if !token.Valid() && token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: cached token expired with no refresh token", shared.ErrTokenExpired)
	}
	return a.auth.Client(ctx, token), nil
}

// Status reports whether a cached token exists and whether it is still
// valid without refreshing.
func (a *Authenticator) Status() (bool, error) {
	token, err := a.loadToken()
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return false, nil
		}
		return false, err
	}
	return token.Valid(), nil
}

func (a *Authenticator) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(a.tokenPath)
	if os.IsNotExist(err) {
		return nil, shared.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: token file is corrupt", shared.ErrNotAuthenticated)
	}
	return &token, nil
}

func (a *Authenticator) saveToken(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(a.tokenPath), 0o755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(a.tokenPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// callbackAddr derives the listen address from the redirect URI so the
// two can never disagree.
func callbackAddr(redirectURI string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: invalid redirect URI: %v", shared.ErrInvalidConfig, err)
	}
	port := u.Port()
	if port == "" {
		return "", fmt.Errorf("%w: redirect URI must include an explicit port", shared.ErrInvalidConfig)
	}
	return "localhost:" + port, nil
}
