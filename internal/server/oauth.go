package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/desertthunder/tessera/internal/shared"
	"golang.org/x/oauth2"
)

// Exchanger trades an authorization code for a token.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// OAuthResult is the outcome of one authorization callback.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>{{.Title}}</title>
  <style>
    body { font-family: system-ui, sans-serif; display: grid; place-items: center; height: 100vh; margin: 0; background: #121212; color: #eee; }
    main { text-align: center; }
    h1 { color: {{.Color}}; }
  </style>
</head>
<body>
  <main>
    <h1>{{.Title}}</h1>
    <p>{{.Message}}</p>
  </main>
</body>
</html>
`))

type callbackView struct {
	Title, Message, Color string
}

// OAuthHandler serves the redirect URI of the authorization code flow.
//
// It accepts a single callback. The result of that callback, good or bad, is delivered
// once on [OAuthHandler.Result]; any later request gets 400.
type OAuthHandler struct {
	exchanger Exchanger
	path      string
	state     string

	handled atomic.Bool
	once    sync.Once
	results chan OAuthResult
}

// NewOAuthHandler creates a callback handler for redirectURI. Only the path of the URI is used.
// The state token should come from [shared.GenerateState].
func NewOAuthHandler(exchanger Exchanger, redirectURI, state string) *OAuthHandler {
	path := "/callback"
	if u, err := url.Parse(redirectURI); err == nil && u.Path != "" {
		path = u.Path
	}
	return &OAuthHandler{
		exchanger: exchanger,
		path:      path,
		state:     state,
		results:   make(chan OAuthResult, 1),
	}
}

func (h *OAuthHandler) Routes() []string {
	return []string{h.path}
}

// authCode validates the callback query and returns the code, or the status to answer with.
func (h *OAuthHandler) authCode(q url.Values) (string, int, error) {
	if q.Get("state") != h.state {
		return "", http.StatusBadRequest, fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed)
	}
	if reason := q.Get("error"); reason != "" {
		return "", http.StatusBadRequest, fmt.Errorf("%w: %s %s", shared.ErrAuthFailed, reason, q.Get("error_description"))
	}
	code := q.Get("code")
	if code == "" {
		return "", http.StatusBadRequest, fmt.Errorf("%w: callback without code", shared.ErrAuthFailed)
	}
	return code, http.StatusOK, nil
}

func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.handled.CompareAndSwap(false, true) {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	code, status, err := h.authCode(r.URL.Query())
	if err == nil {
		var token *oauth2.Token
		if token, err = h.exchanger.Exchange(r.Context(), code); err == nil {
			h.deliver(OAuthResult{Token: token})
			render(w, http.StatusOK, callbackView{
				Title:   "Authorization Successful",
				Message: "tessera is logged in. You can close this window and return to the terminal.",
				Color:   "#1DB954",
			})
			return
		}
		status = http.StatusInternalServerError
	}

	h.deliver(OAuthResult{err: err})
	render(w, status, callbackView{
		Title:   "Authorization Failed",
		Message: err.Error(),
		Color:   "#e22134",
	})
}

func render(w http.ResponseWriter, status int, v callbackView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	callbackPage.Execute(w, v)
}

func (h *OAuthHandler) deliver(result OAuthResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result yields exactly one [OAuthResult] and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.results
}
