package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/agendoc/agendoc/internal/domain/bookingtoken"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingTokenService issues and validates the single-use tokens that gate
// the public patient booking flow. Only SHA-256 hashes are persisted; the raw
// token exists once, in the issuance response.
type BookingTokenService struct {
	repo bookingtoken.Repository
	ttl  time.Duration
	log  *zap.Logger
	now  func() time.Time
}

func NewBookingTokenService(repo bookingtoken.Repository, ttl time.Duration, log *zap.Logger) *BookingTokenService {
	return &BookingTokenService{repo: repo, ttl: ttl, log: log, now: time.Now}
}

// WithClock replaces the time source; tests inject a fixed instant.
func (s *BookingTokenService) WithClock(now func() time.Time) *BookingTokenService {
	s.now = now
	return s
}

// Issue creates a token for one doctor, optionally pinned to a calendar,
// specialty, or calendar scope. Returns the record and the raw token.
func (s *BookingTokenService) Issue(ctx context.Context, doctorID uuid.UUID, calendarID, specialtyID *uuid.UUID, calendarScope string) (*bookingtoken.BookingToken, string, error) {
	raw, err := generateToken()
	if err != nil {
		return nil, "", fmt.Errorf("generating booking token: %w", err)
	}

	t := &bookingtoken.BookingToken{
		DoctorID:      doctorID,
		CalendarID:    calendarID,
		SpecialtyID:   specialtyID,
		CalendarScope: calendarScope,
		TokenHash:     HashToken(raw),
		ExpiresAt:     s.now().Add(s.ttl),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, "", fmt.Errorf("persisting booking token: %w", err)
	}
	return t, raw, nil
}

// Validate resolves a raw token and checks expiry and single-use state.
func (s *BookingTokenService) Validate(ctx context.Context, raw string) (*bookingtoken.BookingToken, error) {
	t, err := s.repo.GetByHash(ctx, HashToken(raw))
	if err != nil {
		return nil, err
	}
	if err := t.Valid(s.now()); err != nil {
		return nil, err
	}
	return t, nil
}

// Consume marks a token used once its booking commits.
func (s *BookingTokenService) Consume(ctx context.Context, t *bookingtoken.BookingToken) error {
	return s.repo.MarkUsed(ctx, t.ID, s.now())
}

// HashToken is the storage form of a raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}
