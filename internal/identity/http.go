package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Praveen2412/pastekeeper/internal/remote"
	"github.com/Praveen2412/pastekeeper/internal/storage"
)

// HTTPProvider implements Provider against the backend auth endpoints. The
// session is cached in memory and persisted through the durable store so it
// survives restarts.
type HTTPProvider struct {
	baseURL    string
	httpClient *http.Client
	kv         storage.Store

	mu      sync.Mutex
	session *Session
	loaded  bool
	pending string // email awaiting OTP verification
}

func NewHTTPProvider(baseURL string, kv storage.Store) (*HTTPProvider, error) {
	normalized, err := remote.NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &HTTPProvider{
		baseURL: normalized,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		kv: kv,
	}, nil
}

func (p *HTTPProvider) CurrentSession(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		p.loadSessionLocked(ctx)
	}
	if p.session == nil || p.session.Expired(time.Now()) {
		return nil, nil
	}
	out := *p.session
	return &out, nil
}

func (p *HTTPProvider) loadSessionLocked(ctx context.Context) {
	p.loaded = true
	raw, err := p.kv.Get(ctx, storage.KeySession)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Failed to load session: %v", err)
		}
		return
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		log.Printf("Malformed persisted session, discarding: %v", err)
		return
	}
	p.session = &session
}

func (p *HTTPProvider) SignUp(ctx context.Context, email, password string) error {
	req := credentialsRequest{Email: email, Password: password}
	if err := p.doJSON(ctx, "/v1/auth/signup", req, nil); err != nil {
		return err
	}
	p.mu.Lock()
	p.pending = email
	p.mu.Unlock()
	return nil
}

func (p *HTTPProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	req := credentialsRequest{Email: email, Password: password}
	var resp sessionResponse
	if err := p.doJSON(ctx, "/v1/auth/signin", req, &resp); err != nil {
		return nil, err
	}
	return p.storeSession(ctx, resp)
}

func (p *HTTPProvider) SignOut(ctx context.Context) error {
	if err := p.doJSON(ctx, "/v1/auth/signout", struct{}{}, nil); err != nil {
		// A failed remote sign-out still clears local state.
		log.Printf("Remote sign-out failed: %v", err)
	}
	p.mu.Lock()
	p.session = nil
	p.loaded = true
	p.mu.Unlock()
	return p.kv.Delete(ctx, storage.KeySession)
}

func (p *HTTPProvider) VerifyOTP(ctx context.Context, email, token string, purpose OTPPurpose) (*Session, error) {
	req := otpRequest{Email: email, Token: token, Type: string(purpose)}
	var resp sessionResponse
	if err := p.doJSON(ctx, "/v1/auth/verify-otp", req, &resp); err != nil {
		return nil, err
	}
	p.mu.Lock()
	if p.pending == email {
		p.pending = ""
	}
	p.mu.Unlock()
	return p.storeSession(ctx, resp)
}

func (p *HTTPProvider) RequestPasswordReset(ctx context.Context, email string) error {
	req := credentialsRequest{Email: email}
	if err := p.doJSON(ctx, "/v1/auth/reset-password", req, nil); err != nil {
		return err
	}
	p.mu.Lock()
	p.pending = email
	p.mu.Unlock()
	return nil
}

func (p *HTTPProvider) PendingVerification() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

func (p *HTTPProvider) ClearPendingVerification() {
	p.mu.Lock()
	p.pending = ""
	p.mu.Unlock()
}

func (p *HTTPProvider) storeSession(ctx context.Context, resp sessionResponse) (*Session, error) {
	session := &Session{
		UserID:      resp.UserID,
		Email:       resp.Email,
		AccessToken: resp.AccessToken,
		ExpiresAt:   resp.ExpiresAt,
	}

	p.mu.Lock()
	p.session = session
	p.loaded = true
	p.mu.Unlock()

	data, err := json.Marshal(session)
	if err != nil {
		return session, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := p.kv.Set(ctx, storage.KeySession, string(data)); err != nil {
		return session, fmt.Errorf("failed to persist session: %w", err)
	}
	out := *session
	return &out, nil
}

func (p *HTTPProvider) doJSON(ctx context.Context, path string, reqBody, respBody any) error {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &remote.APIError{Status: resp.StatusCode}
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(respData, &payload); err == nil {
			apiErr.Code = payload.Error
			apiErr.Message = payload.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(respData))
		}
		return apiErr
	}

	if respBody == nil || len(respData) == 0 {
		return nil
	}
	return json.Unmarshal(respData, respBody)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

type otpRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
	Type  string `json:"type"`
}

type sessionResponse struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}
