// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/jobtracker/internal/config"
	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/middleware"
)

const (
	claimRole         = "role"
	claimTokenVersion = "token_version"
	claimType         = "type"

	tokenTypeAccess = "access"

	jwksCacheControl = "public, max-age=3600"
)

// JWTManager issues and verifies ES256 access tokens and mints opaque
// refresh tokens.
type JWTManager struct {
	keys   *signingKeys
	jwks   jwk.Set
	config config.JWTConfig
	now    func() time.Time
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	keys, err := loadSigningKeys(cfg.PrivateKeyPath, cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load signing keys: %w", err)
	}

	set := jwk.NewSet()
	if err := set.AddKey(keys.public); err != nil {
		return nil, fmt.Errorf("build jwks: %w", err)
	}

	return &JWTManager{
		keys:   keys,
		jwks:   set,
		config: cfg,
		now:    time.Now,
	}, nil
}

type AccessTokenClaims struct {
	UserID       string
	Role         string
	TokenVersion int
}

func (m *JWTManager) AccessTokenTTL() time.Duration {
	return m.config.AccessTokenExpire
}

func (m *JWTManager) GetKeyID() string {
	return m.keys.kid
}

func (m *JWTManager) CreateAccessToken(
	claims AccessTokenClaims,
) (string, error) {
	issued := m.now().UTC().Truncate(time.Second)

	token, err := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(claims.UserID).
		IssuedAt(issued).
		NotBefore(issued).
		Expiration(issued.Add(m.config.AccessTokenExpire)).
		Claim(claimRole, claims.Role).
		Claim(claimTokenVersion, claims.TokenVersion).
		Claim(claimType, tokenTypeAccess).
		Build()
	if err != nil {
		return "", fmt.Errorf("build access token: %w", err)
	}

	signed, err := jwt.Sign(
		token,
		jwt.WithKey(jwa.ES256(), m.keys.private),
	)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return string(signed), nil
}

func (m *JWTManager) VerifyAccessToken(
	_ context.Context,
	raw string,
) (*middleware.AccessTokenClaims, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.ES256(), m.keys.public),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(m.now)),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
	)
	if err != nil {
		if errors.Is(err, jwt.TokenExpiredError()) {
			return nil, fmt.Errorf("verify access token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify access token: %w", core.ErrTokenInvalid)
	}

	return accessClaims(token)
}

func accessClaims(token jwt.Token) (*middleware.AccessTokenClaims, error) {
	invalid := func(reason string) error {
		return fmt.Errorf("verify access token: %s: %w", reason, core.ErrTokenInvalid)
	}

	var kind string
	if err := token.Get(claimType, &kind); err != nil || kind != tokenTypeAccess {
		return nil, invalid("wrong token type")
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, invalid("missing subject")
	}

	var role string
	if err := token.Get(claimRole, &role); err != nil {
		return nil, invalid("missing role")
	}

	// JSON numbers decode as float64.
	var version float64
	if err := token.Get(claimTokenVersion, &version); err != nil {
		return nil, invalid("missing token version")
	}

	jti, _ := token.JwtID()
	exp, _ := token.Expiration()

	return &middleware.AccessTokenClaims{
		ID:           jti,
		UserID:       subject,
		Role:         role,
		TokenVersion: int(version),
		ExpiresAt:    exp,
	}, nil
}

func (m *JWTManager) GetJWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		body, err := json.Marshal(m.jwks)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError),
				http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", jwksCacheControl)
		_, _ = w.Write(body)
	}
}

type RefreshTokenData struct {
	Token     string
	Hash      string
	ExpiresAt time.Time
	FamilyID  string
}

// CreateRefreshToken starts a new family when familyID is empty.
func (m *JWTManager) CreateRefreshToken(
	userID, familyID string,
) (*RefreshTokenData, error) {
	token, err := core.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("refresh token for %s: %w", userID, err)
	}

	if familyID == "" {
		familyID = uuid.NewString()
	}

	return &RefreshTokenData{
		Token:     token,
		Hash:      core.HashToken(token),
		ExpiresAt: m.now().Add(m.config.RefreshTokenExpire),
		FamilyID:  familyID,
	}, nil
}
