package views

import (
	"context"
	"strings"
	"sync"

	"library-web/internal/models"

	"github.com/rs/zerolog"
)

type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
)

type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
}

type LoginSnapshot struct {
	Mode       Mode
	Identifier string
	Username   string
	Email      string
	Error      string
	Submitting bool
}

// LoginView keeps the sign-in and sign-up forms. Passwords are never retained.
type LoginView struct {
	auth   Authenticator
	logger zerolog.Logger

	mu         sync.Mutex
	mode       Mode
	identifier string
	username   string
	email      string
	errMsg     string
	submitting bool
}

func NewLoginView(auth Authenticator, logger zerolog.Logger) *LoginView {
	return &LoginView{
		auth:   auth,
		logger: logger.With().Str("view", "login").Logger(),
		mode:   ModeLogin,
	}
}

func (v *LoginView) SetMode(m Mode) {
	if m != ModeRegister {
		m = ModeLogin
	}
	v.mu.Lock()
	if v.mode != m {
		v.errMsg = ""
	}
	v.mode = m
	v.mu.Unlock()
}

func (v *LoginView) Login(ctx context.Context, identifier, password string) (*models.User, bool) {
	req := models.LoginRequest{Identifier: strings.TrimSpace(identifier), Password: password}

	v.mu.Lock()
	v.mode = ModeLogin
	v.identifier = req.Identifier
	v.mu.Unlock()

	if msg, invalid := firstViolation(validate.Struct(req)); invalid {
		v.fail(msg)
		return nil, false
	}
	if !v.begin() {
		return nil, false
	}
	user, err := v.auth.Login(ctx, req.Identifier, req.Password)
	return v.finish(user, err)
}

func (v *LoginView) Register(ctx context.Context, username, email, password string) (*models.User, bool) {
	req := models.RegisterRequest{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}

	v.mu.Lock()
	v.mode = ModeRegister
	v.username = req.Username
	v.email = req.Email
	v.mu.Unlock()

	if msg, invalid := firstViolation(validate.Struct(req)); invalid {
		v.fail(msg)
		return nil, false
	}
	if !v.begin() {
		return nil, false
	}
	user, err := v.auth.Register(ctx, req)
	return v.finish(user, err)
}

func (v *LoginView) begin() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.submitting {
		return false
	}
	v.submitting = true
	v.errMsg = ""
	return true
}

func (v *LoginView) finish(user *models.User, err error) (*models.User, bool) {
	v.mu.Lock()
	v.submitting = false
	v.mu.Unlock()

	if err != nil {
		v.fail(v.authMessage(err))
		return nil, false
	}
	v.mu.Lock()
	v.identifier, v.username, v.email = "", "", ""
	v.mu.Unlock()
	return user, true
}

func (v *LoginView) authMessage(err error) string {
	if msg := failureMessage(v.logger, err, MsgAuthFailed); strings.TrimSpace(msg) != "" {
		return msg
	}
	return MsgAuthFailed
}

func (v *LoginView) fail(msg string) {
	v.mu.Lock()
	v.errMsg = msg
	v.mu.Unlock()
}

func (v *LoginView) Snapshot() LoginSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return LoginSnapshot{
		Mode:       v.mode,
		Identifier: v.identifier,
		Username:   v.username,
		Email:      v.email,
		Error:      v.errMsg,
		Submitting: v.submitting,
	}
}

func (v *LoginView) Close() {}
