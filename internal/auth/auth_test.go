// AngelaMos | 2026
// auth_test.go

package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/jobtracker/internal/config"
	"github.com/carterperez-dev/jobtracker/internal/core"
)

type memTokens struct {
	mu     sync.Mutex
	byHash map[string]*RefreshToken
}

func newMemTokens() *memTokens {
	return &memTokens{byHash: make(map[string]*RefreshToken)}
}

func (m *memTokens) Create(_ context.Context, token *RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *token
	cp.CreatedAt = time.Now()
	m.byHash[token.TokenHash] = &cp
	return nil
}

func (m *memTokens) FindByHash(_ context.Context, hash string) (*RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byHash[hash]
	if !ok {
		return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (m *memTokens) each(fn func(*RefreshToken)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.byHash {
		fn(t)
	}
}

func (m *memTokens) MarkAsUsed(_ context.Context, id, replacedByID string) error {
	claimed := false
	m.each(func(t *RefreshToken) {
		if t.ID == id && !t.IsUsed {
			now := time.Now()
			t.IsUsed = true
			t.UsedAt = &now
			t.ReplacedByID = &replacedByID
			claimed = true
		}
	})
	if !claimed {
		return core.ErrNotFound
	}
	return nil
}

func (m *memTokens) revokeWhere(match func(*RefreshToken) bool) {
	now := time.Now()
	m.each(func(t *RefreshToken) {
		if match(t) && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	})
}

func (m *memTokens) RevokeByID(_ context.Context, id string) error {
	m.revokeWhere(func(t *RefreshToken) bool { return t.ID == id })
	return nil
}

func (m *memTokens) RevokeByFamilyID(_ context.Context, familyID string) error {
	m.revokeWhere(func(t *RefreshToken) bool { return t.FamilyID == familyID })
	return nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID string) error {
	m.revokeWhere(func(t *RefreshToken) bool { return t.UserID == userID })
	return nil
}

func (m *memTokens) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for hash, t := range m.byHash {
		if t.ExpiresAt.Before(before) {
			delete(m.byHash, hash)
			n++
		}
	}
	return n, nil
}

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*UserInfo
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: make(map[string]*UserInfo)}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memUsers) Create(_ context.Context, email, hash, name string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[email]; ok {
		return nil, fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}
	u := &UserInfo{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         "user",
		CreatedAt:    time.Now(),
	}
	m.byEmail[email] = u
	cp := *u
	return &cp, nil
}

func (m *memUsers) IncrementTokenVersion(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == userID {
			u.TokenVersion++
		}
	}
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == userID {
			u.PasswordHash = hash
		}
	}
	return nil
}

type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (m *memRevocations) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl > 0 {
		m.revoked[jti] = ttl
	}
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

func newTestJWT(t *testing.T) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(priv, pub))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     priv,
		PublicKeyPath:      pub,
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 7 * 24 * time.Hour,
		Issuer:             "jobtracker-test",
		Audience:           "jobtracker-api",
	})
	require.NoError(t, err)
	return m
}

type authFixture struct {
	service     *Service
	tokens      *memTokens
	users       *memUsers
	revocations *memRevocations
	signups     []string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		tokens:      newMemTokens(),
		users:       newMemUsers(),
		revocations: &memRevocations{revoked: make(map[string]time.Duration)},
	}
	f.service = NewService(
		f.tokens,
		newTestJWT(t),
		f.users,
		f.revocations,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithSignupHook(func(_ context.Context, userID string) error {
			f.signups = append(f.signups, userID)
			return nil
		}),
	)
	return f
}

func (f *authFixture) register(t *testing.T, email string) *AuthResponse {
	t.Helper()

	resp, err := f.service.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "correct-horse-battery",
		Name:     "Test User",
	}, Client{UserAgent: "go-test", IP: "127.0.0.1"})
	require.NoError(t, err)
	return resp
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newTestJWT(t)

	token, err := m.CreateAccessToken(AccessTokenClaims{
		UserID:       "user-1",
		Role:         "admin",
		TokenVersion: 3,
	})
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt, 5*time.Second)
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	m := newTestJWT(t)
	other := newTestJWT(t)

	token, err := other.CreateAccessToken(AccessTokenClaims{UserID: "user-1", Role: "user"})
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = m.VerifyAccessToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	m := newTestJWT(t)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.CreateAccessToken(AccessTokenClaims{UserID: "user-1", Role: "user"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestJWTManager_KeyIDIsStable(t *testing.T) {
	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(priv, pub))

	cfg := config.JWTConfig{PrivateKeyPath: priv, PublicKeyPath: pub}
	a, err := NewJWTManager(cfg)
	require.NoError(t, err)
	b, err := NewJWTManager(cfg)
	require.NoError(t, err)

	assert.Len(t, a.GetKeyID(), keyIDLength)
	assert.Equal(t, a.GetKeyID(), b.GetKeyID())

	info, err := os.Stat(priv)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestJWTManager_RejectsMismatchedPublicKey(t *testing.T) {
	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(priv, pub))
	require.NoError(t, GenerateKeyPair(filepath.Join(dir, "other.pem"), pub))

	_, err := NewJWTManager(config.JWTConfig{PrivateKeyPath: priv, PublicKeyPath: pub})
	assert.ErrorIs(t, err, errKeyMismatch)

	_, err = NewJWTManager(config.JWTConfig{
		PrivateKeyPath: priv,
		PublicKeyPath:  filepath.Join(dir, "missing.pem"),
	})
	assert.NoError(t, err)
}

func TestJWTManager_JWKSHandler(t *testing.T) {
	m := newTestJWT(t)

	rec := httptest.NewRecorder()
	m.GetJWKSHandler()(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"kid":"`+m.GetKeyID()+`"`)
	assert.Contains(t, rec.Body.String(), `"alg":"ES256"`)
	assert.NotContains(t, rec.Body.String(), `"d":`)
}

func TestService_RegisterRunsSignupHook(t *testing.T) {
	f := newAuthFixture(t)

	resp := f.register(t, "ada@example.com")

	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, "Bearer", resp.Tokens.TokenType)
	assert.Equal(t, 900, resp.Tokens.ExpiresIn)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.Equal(t, []string{resp.User.ID}, f.signups)
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada@example.com")

	_, err := f.service.Register(context.Background(), RegisterRequest{
		Email:    "ada@example.com",
		Password: "another-password",
		Name:     "Ada",
	}, Client{})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Len(t, f.signups, 1)
}

func TestService_Login(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada@example.com")
	ctx := context.Background()

	resp, err := f.service.Login(ctx, LoginRequest{
		Email:    "ada@example.com",
		Password: "correct-horse-battery",
	}, Client{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Tokens.AccessToken)

	_, err = f.service.Login(ctx, LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong-password",
	}, Client{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.service.Login(ctx, LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse-battery",
	}, Client{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_RefreshRotatesAndDetectsReuse(t *testing.T) {
	f := newAuthFixture(t)
	first := f.register(t, "ada@example.com")
	ctx := context.Background()

	second, err := f.service.Refresh(ctx, first.Tokens.RefreshToken, Client{})
	require.NoError(t, err)
	assert.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)

	_, err = f.service.Refresh(ctx, first.Tokens.RefreshToken, Client{})
	assert.ErrorIs(t, err, ErrTokenReuse)

	_, err = f.service.Refresh(ctx, second.Tokens.RefreshToken, Client{})
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestService_RefreshUnknownToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Refresh(context.Background(), "missing", Client{})
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestService_LogoutRevokesAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.register(t, "ada@example.com")
	ctx := context.Background()

	claims, err := f.service.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, claims, resp.Tokens.RefreshToken))

	_, err = f.service.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	_, err = f.service.Refresh(ctx, resp.Tokens.RefreshToken, Client{})
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestService_LogoutRejectsForeignRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	ada := f.register(t, "ada@example.com")
	bob := f.register(t, "bob@example.com")
	ctx := context.Background()

	claims, err := f.service.VerifyAccessToken(ctx, ada.Tokens.AccessToken)
	require.NoError(t, err)

	err = f.service.Logout(ctx, claims, bob.Tokens.RefreshToken)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestService_LogoutAllInvalidatesOutstandingTokens(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.register(t, "ada@example.com")
	ctx := context.Background()

	require.NoError(t, f.service.LogoutAll(ctx, resp.User.ID))

	_, err := f.service.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestService_PruneExpired(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada@example.com")

	n, err := f.service.PruneExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.service.PruneExpired(context.Background(), time.Now().AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
