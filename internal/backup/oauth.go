package backup

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/skratchdot/open-golang/open"
	"golang.org/x/oauth2"
)

// Google's OAuth endpoint, spelled out to keep the metadata client that
// comes with golang.org/x/oauth2/google out of the build.
var GoogleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

const revokeURL = "https://oauth2.googleapis.com/revoke"

var (
	ErrNoClientID        = errors.New("no Google OAuth client id configured")
	ErrInteractiveOnly   = errors.New("sign-in requires the browser")
	ErrAuthStateMismatch = errors.New("oauth state mismatch")
)

// Authenticator yields access tokens for the Drive calls.
type Authenticator interface {
	// Token returns a valid token. When interactive is false it must not
	// prompt the user and fails if no usable token is held.
	Token(ctx context.Context, interactive bool) (*oauth2.Token, error)
	// SetToken restores a previously issued token.
	SetToken(tok *oauth2.Token)
	// Revoke invalidates tok with the provider.
	Revoke(ctx context.Context, tok *oauth2.Token) error
}

// NewLoopbackAuthParams configures a LoopbackAuth.
type NewLoopbackAuthParams struct {
	ClientID     string
	ClientSecret string
	// Port for the 127.0.0.1 redirect listener.
	Port int
	// OpenURL opens the consent page. Defaults to the system browser.
	OpenURL func(string) error
	Client  *http.Client
}

// LoopbackAuth runs the installed-app OAuth flow: the consent page opens
// in the browser and the code comes back to a local listener.
type LoopbackAuth struct {
	config  *oauth2.Config
	port    int
	openURL func(string) error
	client  *http.Client

	mu  sync.Mutex
	tok *oauth2.Token
}

// NewLoopbackAuth creates a LoopbackAuth.
func NewLoopbackAuth(params NewLoopbackAuthParams) *LoopbackAuth {
	openURL := params.OpenURL
	if openURL == nil {
		openURL = open.Run
	}
	client := params.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &LoopbackAuth{
		config: &oauth2.Config{
			ClientID:     params.ClientID,
			ClientSecret: params.ClientSecret,
			Endpoint:     GoogleEndpoint,
			RedirectURL:  fmt.Sprintf("http://127.0.0.1:%d/callback", params.Port),
			Scopes:       Scopes,
		},
		port:    params.Port,
		openURL: openURL,
		client:  client,
	}
}

func (a *LoopbackAuth) ctx(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.client)
}

func (a *LoopbackAuth) SetToken(tok *oauth2.Token) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tok = tok
}

func (a *LoopbackAuth) Token(ctx context.Context, interactive bool) (*oauth2.Token, error) {
	if a.config.ClientID == "" {
		return nil, ErrNoClientID
	}

	a.mu.Lock()
	held := a.tok
	a.mu.Unlock()

	if held != nil {
		tok, err := a.config.TokenSource(a.ctx(ctx), held).Token()
		if err == nil {
			a.SetToken(tok)
			return tok, nil
		}
		log.Debug("Token refresh failed", "error", err)
		if !interactive {
			return nil, err
		}
	}
	if !interactive {
		return nil, ErrInteractiveOnly
	}

	tok, err := a.consent(ctx)
	if err != nil {
		return nil, err
	}
	a.SetToken(tok)
	return tok, nil
}

// consent opens the browser and waits for the redirect.
func (a *LoopbackAuth) consent(ctx context.Context) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", a.port))
	if err != nil {
		return nil, fmt.Errorf("listen for oauth redirect: %w", err)
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)
	finish := func(res result) {
		select {
		case done <- res:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			finish(result{err: ErrAuthStateMismatch})
			http.Error(w, "State mismatch.", http.StatusBadRequest)
		case q.Get("error") != "":
			finish(result{err: fmt.Errorf("oauth: %s", q.Get("error"))})
			http.Error(w, "Sign-in was cancelled.", http.StatusBadRequest)
		default:
			finish(result{code: q.Get("code")})
			fmt.Fprintln(w, "Signed in. You can close this window.")
		}
	})
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer srv.Close()

	authURL := a.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	log.Info("Opening browser for Google sign-in", "url", authURL)
	if err := a.openURL(authURL); err != nil {
		log.Warn("Could not open browser", "error", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return a.config.Exchange(a.ctx(ctx), res.code, oauth2.VerifierOption(verifier))
	}
}

func (a *LoopbackAuth) Revoke(ctx context.Context, tok *oauth2.Token) error {
	if tok == nil {
		return nil
	}
	value := tok.RefreshToken
	if value == "" {
		value = tok.AccessToken
	}
	body := url.Values{"token": {value}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke token: %s", resp.Status)
	}
	a.SetToken(nil)
	return nil
}
