package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agendoc/agendoc/internal/domain/bookingtoken"
	"github.com/google/uuid"
)

func newTokenService(now time.Time) (*BookingTokenService, *fakeTokenRepo) {
	repo := newFakeTokenRepo()
	svc := NewBookingTokenService(repo, 48*time.Hour, testLogger).
		WithClock(func() time.Time { return now })
	return svc, repo
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc, repo := newTokenService(now)
	doctorID := uuid.New()

	issued, raw, err := svc.Issue(context.Background(), doctorID, nil, nil, "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if raw == "" {
		t.Fatal("raw token is empty")
	}
	if issued.TokenHash == raw {
		t.Fatal("raw token stored verbatim")
	}
	if issued.TokenHash != HashToken(raw) {
		t.Fatal("stored hash does not match the raw token")
	}
	if !issued.ExpiresAt.Equal(now.Add(48 * time.Hour)) {
		t.Errorf("expiry %v, want now+48h", issued.ExpiresAt)
	}

	resolved, err := svc.Validate(context.Background(), raw)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if resolved.DoctorID != doctorID {
		t.Errorf("doctor %s, want %s", resolved.DoctorID, doctorID)
	}
	if len(repo.tokens) != 1 {
		t.Errorf("stored %d tokens, want 1", len(repo.tokens))
	}
}

func TestIssuedTokensAreUnique(t *testing.T) {
	svc, _ := newTokenService(time.Now())
	_, rawA, err := svc.Issue(context.Background(), uuid.New(), nil, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	_, rawB, err := svc.Issue(context.Background(), uuid.New(), nil, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if rawA == rawB {
		t.Fatal("two issued tokens are identical")
	}
}

func TestValidateUnknownToken(t *testing.T) {
	svc, _ := newTokenService(time.Now())
	_, err := svc.Validate(context.Background(), "no-such-token")
	if !errors.Is(err, bookingtoken.ErrTokenNotFound) {
		t.Fatalf("got %v, want ErrTokenNotFound", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc, _ := newTokenService(now)

	_, raw, err := svc.Issue(context.Background(), uuid.New(), nil, nil, "")
	if err != nil {
		t.Fatal(err)
	}

	svc.WithClock(func() time.Time { return now.Add(49 * time.Hour) })
	_, err = svc.Validate(context.Background(), raw)
	if !errors.Is(err, bookingtoken.ErrTokenExpired) {
		t.Fatalf("got %v, want ErrTokenExpired", err)
	}
}

func TestConsumeIsSingleUse(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc, _ := newTokenService(now)

	issued, raw, err := svc.Issue(context.Background(), uuid.New(), nil, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Consume(context.Background(), issued); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	if err := svc.Consume(context.Background(), issued); !errors.Is(err, bookingtoken.ErrTokenUsed) {
		t.Fatalf("second consume got %v, want ErrTokenUsed", err)
	}
	if _, err := svc.Validate(context.Background(), raw); !errors.Is(err, bookingtoken.ErrTokenUsed) {
		t.Fatalf("validate after use got %v, want ErrTokenUsed", err)
	}
}
