package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"library-web/internal/api"
	"library-web/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authMock struct {
	mu        sync.Mutex
	meFn      func() (*models.User, error)
	loginFn   func(req models.LoginRequest) (*models.User, error)
	logoutErr error
	meCalls   int
	release   chan struct{}
}

func (m *authMock) Me(ctx context.Context) (*models.User, error) {
	m.mu.Lock()
	m.meCalls++
	m.mu.Unlock()
	if m.release != nil {
		<-m.release
	}
	return m.meFn()
}

func (m *authMock) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	return m.loginFn(req)
}

func (m *authMock) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return &models.User{ID: "9", Username: req.Username, Email: req.Email, Role: models.RoleUser}, nil
}

func (m *authMock) Logout(ctx context.Context) error {
	return m.logoutErr
}

var alice = &models.User{ID: "1", Username: "alice", Role: models.RoleUser}

func TestCache_StartsLoading(t *testing.T) {
	c := NewCache(&authMock{}, nil, zerolog.Nop())
	st := c.State()
	assert.True(t, st.Loading)
	assert.Nil(t, st.User)
}

func TestCache_InitResolvesUser(t *testing.T) {
	m := &authMock{meFn: func() (*models.User, error) { return alice, nil }}
	c := NewCache(m, nil, zerolog.Nop())

	c.Init(context.Background())
	c.Init(context.Background())

	st := c.State()
	assert.False(t, st.Loading)
	assert.Equal(t, alice, st.User)
	assert.Equal(t, 1, m.meCalls)
}

func TestCache_ConcurrentInitObservesLoading(t *testing.T) {
	m := &authMock{
		meFn:    func() (*models.User, error) { return alice, nil },
		release: make(chan struct{}),
	}
	c := NewCache(m, nil, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		c.Init(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.meCalls == 1
	}, time.Second, 5*time.Millisecond)

	c.Init(context.Background())
	assert.True(t, c.State().Loading)

	close(m.release)
	<-done
	assert.False(t, c.State().Loading)
	assert.Equal(t, alice, c.User())
}

func TestCache_RefreshUnauthorizedClearsUser(t *testing.T) {
	var fail error
	m := &authMock{meFn: func() (*models.User, error) {
		if fail != nil {
			return nil, fail
		}
		return alice, nil
	}}
	c := NewCache(m, nil, zerolog.Nop())
	c.Init(context.Background())
	require.NotNil(t, c.User())

	fail = &api.RequestError{Status: http.StatusUnauthorized, Message: "Unauthorized"}
	c.Refresh(context.Background())

	assert.Nil(t, c.User())
	assert.False(t, c.State().Loading)
}

func TestCache_RefreshOtherFailureKeepsUser(t *testing.T) {
	var fail error
	m := &authMock{meFn: func() (*models.User, error) {
		if fail != nil {
			return nil, fail
		}
		return alice, nil
	}}
	c := NewCache(m, nil, zerolog.Nop())
	c.Init(context.Background())

	fail = &api.RequestError{Status: http.StatusInternalServerError, Message: "boom"}
	c.Refresh(context.Background())
	assert.Equal(t, alice, c.User())

	fail = errors.New("connection refused")
	c.Refresh(context.Background())
	assert.Equal(t, alice, c.User())
	assert.False(t, c.State().Loading)
}

func TestCache_LateUnauthorizedCheckKeepsFreshLogin(t *testing.T) {
	m := &authMock{
		release: make(chan struct{}),
		meFn: func() (*models.User, error) {
			return nil, &api.RequestError{Status: http.StatusUnauthorized, Message: "Unauthorized"}
		},
		loginFn: func(req models.LoginRequest) (*models.User, error) {
			return alice, nil
		},
	}
	c := NewCache(m, nil, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		c.Init(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.meCalls == 1
	}, time.Second, 5*time.Millisecond)

	_, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	close(m.release)
	<-done

	assert.Equal(t, alice, c.User())
	assert.False(t, c.State().Loading)
}

func TestCache_LoginFailureLeavesUserUnchanged(t *testing.T) {
	m := &authMock{
		meFn: func() (*models.User, error) {
			return nil, &api.RequestError{Status: http.StatusUnauthorized}
		},
		loginFn: func(req models.LoginRequest) (*models.User, error) {
			return nil, &api.RequestError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
		},
	}
	c := NewCache(m, nil, zerolog.Nop())
	c.Init(context.Background())

	_, err := c.Login(context.Background(), "alice", "wrong")

	var reqErr *api.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Invalid credentials", reqErr.Message)
	assert.Nil(t, c.User())
}

func TestCache_LoginSetsUser(t *testing.T) {
	m := &authMock{loginFn: func(req models.LoginRequest) (*models.User, error) {
		assert.Equal(t, "alice", req.Identifier)
		assert.Equal(t, "secret", req.Password)
		return alice, nil
	}}
	c := NewCache(m, nil, zerolog.Nop())

	user, err := c.Login(context.Background(), "alice", "secret")

	require.NoError(t, err)
	assert.Equal(t, alice, user)
	st := c.State()
	assert.Equal(t, alice, st.User)
	assert.False(t, st.Loading)
}

func TestCache_RegisterSetsUser(t *testing.T) {
	c := NewCache(&authMock{}, nil, zerolog.Nop())

	user, err := c.Register(context.Background(), models.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, user, c.User())
}

func TestCache_LogoutClearsEvenOnFailure(t *testing.T) {
	m := &authMock{
		loginFn:   func(req models.LoginRequest) (*models.User, error) { return alice, nil },
		logoutErr: errors.New("network down"),
	}
	cleared := false
	c := NewCache(m, func() { cleared = true }, zerolog.Nop())
	_, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	c.Logout(context.Background())

	assert.Nil(t, c.User())
	assert.True(t, cleared)
}
