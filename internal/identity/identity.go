// Package identity abstracts the authenticated-identity collaborator. The
// core only needs session presence and the user id; the full sign-in/up/OTP
// surface exists for the shell.
package identity

import (
	"context"
	"time"
)

// Session is the authenticated state for the current user.
type Session struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry. Zero expiry means
// the session does not expire.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// OTPPurpose selects the verification flow an OTP belongs to.
type OTPPurpose string

const (
	OTPSignup   OTPPurpose = "signup"
	OTPRecovery OTPPurpose = "recovery"
)

// Provider exposes identity operations. CurrentSession returns (nil, nil)
// when no one is signed in; absence of a session is not an error.
type Provider interface {
	CurrentSession(ctx context.Context) (*Session, error)
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	VerifyOTP(ctx context.Context, email, token string, purpose OTPPurpose) (*Session, error)
	RequestPasswordReset(ctx context.Context, email string) error

	// PendingVerification returns the email address awaiting OTP
	// verification, or "" when none. Cleared automatically when
	// verification completes, explicitly via ClearPendingVerification.
	PendingVerification() string
	ClearPendingVerification()
}
