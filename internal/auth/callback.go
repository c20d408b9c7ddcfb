package auth

import (
	"fmt"
	"net/http"
	"sync"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// callbackResult carries the outcome of one authorization attempt.
type callbackResult struct {
	Token *oauth2.Token
	err   error
}

func (r callbackResult) Error() error {
	return r.err
}

// callbackHandler serves the OAuth redirect exactly once and delivers
// the exchanged token on its result channel.
type callbackHandler struct {
	auth       *spotifyauth.Authenticator
	state      string
	resultChan chan callbackResult
	once       sync.Once

	mu  sync.Mutex
	hit bool
}

func newCallbackHandler(auth *spotifyauth.Authenticator, state string) *callbackHandler {
	return &callbackHandler{
		auth:       auth,
		state:      state,
		resultChan: make(chan callbackResult, 1),
	}
}

// Result returns the channel that receives exactly one result before
// being closed.
func (h *callbackHandler) Result() <-chan callbackResult {
	return h.resultChan
}

func (h *callbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	token, err := h.auth.Token(r.Context(), h.state, r)
	if err != nil {
		h.send(callbackResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	h.send(callbackResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>&#10003; Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

func (h *callbackHandler) send(result callbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}
