package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/agendoc/agendoc/internal/config"
	"github.com/agendoc/agendoc/internal/domain"
	"github.com/google/uuid"
)

func testManager(ttl time.Duration) *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-at-least-32-bytes-long!!",
		AccessTokenTTL:  ttl,
		RefreshTokenTTL: ttl * 4,
		Issuer:          "agendoc-test",
	})
}

func testClaims() *domain.Claims {
	return &domain.Claims{
		UserID: uuid.New(),
		Email:  "dr.martin@example.org",
		Role:   domain.RoleDoctor,
	}
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	m := testManager(15 * time.Minute)
	in := testClaims()

	pair, err := m.GenerateTokenPair(in)
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("token type %q, want Bearer", pair.TokenType)
	}

	out, err := m.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if out.UserID != in.UserID || out.Email != in.Email || out.Role != in.Role {
		t.Errorf("claims round trip: got %+v, want %+v", out, in)
	}

	if _, err := m.ValidateRefreshToken(pair.RefreshToken); err != nil {
		t.Fatalf("ValidateRefreshToken: %v", err)
	}
}

func TestTokenTypeMismatch(t *testing.T) {
	m := testManager(15 * time.Minute)
	pair, err := m.GenerateTokenPair(testClaims())
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	if _, err := m.ValidateAccessToken(pair.RefreshToken); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Errorf("refresh as access got %v, want ErrTokenTypeMismatch", err)
	}
	if _, err := m.ValidateRefreshToken(pair.AccessToken); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Errorf("access as refresh got %v, want ErrTokenTypeMismatch", err)
	}
}

func TestExpiredToken(t *testing.T) {
	m := testManager(-time.Minute)
	pair, err := m.GenerateTokenPair(testClaims())
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	if _, err := m.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("got %v, want ErrTokenExpired", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	pair, err := testManager(15 * time.Minute).GenerateTokenPair(testClaims())
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	other := NewJWTManager(config.JWTConfig{
		Secret:         "another-secret-that-does-not-match!!",
		AccessTokenTTL: 15 * time.Minute,
		Issuer:         "agendoc-test",
	})
	if _, err := other.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("got %v, want ErrTokenInvalid", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	m := testManager(15 * time.Minute)
	if _, err := m.ValidateAccessToken("not-a-jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("got %v, want ErrTokenInvalid", err)
	}
}
