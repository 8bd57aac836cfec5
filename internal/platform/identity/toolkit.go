package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultToolkitURL = "https://identitytoolkit.googleapis.com"

type ToolkitConfig struct {
	BaseURL    string
	APIKey     string
	RPS        int
	MaxRetries int
	Timeout    time.Duration
}

// ToolkitProvider signs in with email/password through the Identity Toolkit
// REST API (v1). The session lives in process memory only.
type ToolkitProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	maxRetries int
	state      authState
}

func NewToolkitProvider(cfg ToolkitConfig) *ToolkitProvider {
	base := cfg.BaseURL
	if base == "" {
		base = defaultToolkitURL
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 10
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ToolkitProvider{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: cfg.MaxRetries,
	}
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// passwordResponse matches both accounts:signInWithPassword and accounts:signUp.
type passwordResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type toolkitErrorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// toolkitCodes maps REST error messages to provider codes. The REST API may
// append detail after " : ".
var toolkitCodes = map[string]string{
	"EMAIL_NOT_FOUND":             CodeUserNotFound,
	"INVALID_EMAIL":               CodeInvalidEmail,
	"MISSING_EMAIL":               CodeInvalidEmail,
	"INVALID_PASSWORD":            CodeWrongPassword,
	"MISSING_PASSWORD":            CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":   CodeInvalidCredential,
	"EMAIL_EXISTS":                CodeEmailAlreadyInUse,
	"WEAK_PASSWORD":               CodeWeakPassword,
	"USER_DISABLED":               CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER": CodeTooManyRequests,
}

func (p *ToolkitProvider) SignIn(ctx context.Context, email, password string) (User, error) {
	return p.passwordCall(ctx, "accounts:signInWithPassword", email, password, true)
}

func (p *ToolkitProvider) SignUp(ctx context.Context, email, password string) (User, error) {
	// A signUp that may have committed is not resent: the retry would fail
	// with EMAIL_EXISTS for an account that was just created.
	return p.passwordCall(ctx, "accounts:signUp", email, password, false)
}

func (p *ToolkitProvider) SignOut(ctx context.Context) error {
	p.state.set(nil)
	return nil
}

func (p *ToolkitProvider) CurrentUser() (User, bool) {
	return p.state.current()
}

func (p *ToolkitProvider) OnAuthStateChanged(fn func(*User)) func() {
	return p.state.subscribe(fn)
}

// Token returns the current ID token, or "" when signed out.
func (p *ToolkitProvider) Token() string {
	return p.state.token()
}

func (p *ToolkitProvider) passwordCall(ctx context.Context, method, email, password string, idempotent bool) (User, error) {
	body, err := json.Marshal(passwordRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return User{}, err
	}
	u := fmt.Sprintf("%s/v1/%s?key=%s", p.baseURL, method, url.QueryEscape(p.apiKey))

	var res passwordResponse
	if err := p.post(ctx, u, body, &res, idempotent); err != nil {
		return User{}, err
	}
	user := User{UID: res.LocalID, Email: res.Email, Token: res.IDToken}
	p.state.set(&user)
	return user, nil
}

func (p *ToolkitProvider) post(ctx context.Context, u string, body []byte, target any, idempotent bool) error {
	var lastErr error
	for i := 0; i <= p.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := p.attempt(ctx, u, body, target)
		if !idempotent {
			retry = false
		}
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (p *ToolkitProvider) attempt(ctx context.Context, u string, body []byte, target any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, &Error{Code: CodeNetworkRequestFail, Message: "A network error has occurred.", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return true, &Error{Code: CodeInternal, Message: fmt.Sprintf("identity toolkit returned %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return false, decodeToolkitError(resp)
	}
	return false, json.NewDecoder(resp.Body).Decode(target)
}

func decodeToolkitError(resp *http.Response) *Error {
	var env toolkitErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.Error.Message == "" {
		return &Error{Code: CodeInternal, Message: fmt.Sprintf("identity toolkit returned %d", resp.StatusCode), Err: err}
	}
	return toolkitError(env.Error.Message)
}

func toolkitError(message string) *Error {
	key, detail, _ := strings.Cut(message, " : ")
	key = strings.TrimSpace(key)
	code, ok := toolkitCodes[key]
	if !ok {
		code = CodeInternal
	}
	msg := key
	if detail != "" {
		msg = detail
	}
	return &Error{Code: code, Message: msg, Err: errors.New(message)}
}
