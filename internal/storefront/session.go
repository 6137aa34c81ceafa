package storefront

import (
	"context"
	"log/slog"
	"strings"
)

// TokenKey is the key the session token is persisted under.
const TokenKey = "token"

// Messages shown by the login form.
const (
	MsgAgreeTerms    = "Please agree to the terms and conditions."
	MsgRequestFailed = "Request failed. Please try again."
	MsgUnreachable   = "Something went wrong. Please try again."
)

// AuthResult is the outcome of a login or registration attempt.
type AuthResult struct {
	OK      bool
	Message string
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	AgreeTerms bool
}

// Session holds the active bearer token. An empty token means guest.
type Session struct {
	st     *state
	client *Client
	tokens TokenStore
	cart   *Cart
	logger *slog.Logger
}

// Login authenticates with email and password.
func (s *Session) Login(ctx context.Context, email, password string) AuthResult {
	env, err := s.client.Login(ctx, strings.TrimSpace(email), password)
	return s.complete(ctx, "login", env, err)
}

// Register creates an account. The terms must be accepted before any
// request is sent.
func (s *Session) Register(ctx context.Context, in RegisterInput) AuthResult {
	if !in.AgreeTerms {
		return AuthResult{Message: MsgAgreeTerms}
	}
	env, err := s.client.Register(ctx, strings.TrimSpace(in.Name), strings.TrimSpace(in.Email), in.Password)
	return s.complete(ctx, "register", env, err)
}

func (s *Session) complete(ctx context.Context, op string, env *Envelope, err error) AuthResult {
	if err != nil {
		s.logger.WarnContext(ctx, "auth request failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return AuthResult{Message: MsgUnreachable}
	}
	if !env.Success || env.Token == "" {
		msg := env.Message
		if msg == "" {
			msg = MsgRequestFailed
		}
		return AuthResult{Message: msg}
	}

	s.setToken(ctx, env.Token, true)
	return AuthResult{OK: true}
}

// SetToken makes token the active session, persists it and reloads the
// cart once. Setting the current token again does nothing.
func (s *Session) SetToken(ctx context.Context, token string) {
	s.setToken(ctx, token, true)
}

// Restore activates the persisted token, if any.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.tokens.Get(ctx, TokenKey)
	if err != nil {
		s.logger.WarnContext(ctx, "read persisted token failed", slog.String("error", err.Error()))
		return err
	}
	if token != "" {
		s.setToken(ctx, token, false)
	}
	return nil
}

// Token returns the active token.
func (s *Session) Token() string {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return s.st.token
}

// Authenticated reports whether a token is active.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func (s *Session) setToken(ctx context.Context, token string, persist bool) {
	s.st.mu.Lock()
	if s.st.token == token {
		s.st.mu.Unlock()
		return
	}
	s.st.token = token
	s.st.mu.Unlock()

	if persist {
		if err := s.tokens.Set(ctx, TokenKey, token); err != nil {
			s.logger.WarnContext(ctx, "persist token failed", slog.String("error", err.Error()))
		}
	}
	// Reload failures are logged by the cart.
	_ = s.cart.Reload(ctx)
}
