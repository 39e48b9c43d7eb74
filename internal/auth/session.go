// AngelaMos | 2026
// session.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/middleware"
)

const tokenTypeBearer = "Bearer"

// Refresh rotates a refresh token. The old token is claimed before the new
// one is stored, so of two concurrent refreshes with the same token only one
// wins and the other is treated as reuse.
func (s *Service) Refresh(ctx context.Context, raw string, client Client) (*AuthResponse, error) {
	old, err := s.repo.FindByHash(ctx, core.HashToken(raw))
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	now := s.now()
	switch {
	case old.IsUsed:
		return nil, s.reuseDetected(ctx, old)
	case old.IsRevoked():
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
	case old.IsExpired(now):
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	u, err := s.users.GetByID(ctx, old.UserID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	next := uuid.NewString()
	if err := s.repo.MarkAsUsed(ctx, old.ID, next); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, s.reuseDetected(ctx, old)
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	return s.issue(ctx, u, client, next, old.FamilyID)
}

func (s *Service) reuseDetected(ctx context.Context, t *RefreshToken) error {
	s.logger.WarnContext(ctx, "refresh token reuse detected",
		"user_id", t.UserID,
		"family_id", t.FamilyID,
	)
	if err := s.repo.RevokeByFamilyID(ctx, t.FamilyID); err != nil {
		s.logger.ErrorContext(ctx, "revoke token family failed",
			"family_id", t.FamilyID,
			"error", err,
		)
	}
	return ErrTokenReuse
}

// Logout revokes the presented access token and, when given, the refresh
// token belonging to the same user.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
	refreshToken string,
) error {
	if claims == nil {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if refreshToken != "" {
		if err := s.revokeOwned(ctx, claims.UserID, refreshToken); err != nil {
			return err
		}
	}

	if claims.ID == "" {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(s.now())); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *Service) revokeOwned(ctx context.Context, userID, raw string) error {
	t, err := s.repo.FindByHash(ctx, core.HashToken(raw))
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if t.UserID != userID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	err = s.repo.RevokeByID(ctx, t.ID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// LogoutAll revokes every refresh token and bumps the token version so
// outstanding access tokens fail verification.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("logout all: %w", core.ErrUnauthorized)
	}
	if err := s.repo.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	return nil
}

// VerifyAccessToken checks the signature, then the revocation list, then
// the user's token version. A revocation lookup failure is logged and
// the token is accepted.
func (s *Service) VerifyAccessToken(ctx context.Context, token string) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "revocation lookup failed", "error", err)
		case revoked:
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
		}
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	case err != nil:
		return nil, fmt.Errorf("verify token: %w", err)
	case claims.TokenVersion < u.TokenVersion:
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}
	return claims, nil
}

func (s *Service) openSession(ctx context.Context, u *UserInfo, client Client) (*AuthResponse, error) {
	return s.issue(ctx, u, client, uuid.NewString(), "")
}

// issue signs an access token and stores refresh token tokenID in family.
// An empty family starts a new one.
func (s *Service) issue(
	ctx context.Context,
	u *UserInfo,
	client Client,
	tokenID, family string,
) (*AuthResponse, error) {
	access, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       u.ID,
		Role:         u.Role,
		TokenVersion: u.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	refresh, err := s.jwt.CreateRefreshToken(u.ID, family)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	err = s.repo.Create(ctx, &RefreshToken{
		ID:        tokenID,
		UserID:    u.ID,
		TokenHash: refresh.Hash,
		FamilyID:  refresh.FamilyID,
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: client.UserAgent,
		IPAddress: client.IP,
	})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	ttl := s.jwt.AccessTokenTTL()
	return &AuthResponse{
		User: toUserResponse(u),
		Tokens: TokenResponse{
			AccessToken:  access,
			RefreshToken: refresh.Token,
			TokenType:    tokenTypeBearer,
			ExpiresIn:    int(ttl / time.Second),
			ExpiresAt:    s.now().Add(ttl),
		},
	}, nil
}
