// Package admin provides platform-operator actions: verifying practices
// and issuing practice-admin invite tokens.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/practice"
	"github.com/IAmASonOfGod/medcare-booking-platform/pkg/logging"
)

// ErrInvitesDisabled is returned when no invite secret is configured.
var ErrInvitesDisabled = errors.New("admin: invites disabled")

const inviteIssuer = "medcare-admin"

// PracticeStore reads and writes practice settings.
type PracticeStore interface {
	Get(ctx context.Context, practiceID string) (*practice.Settings, error)
	Set(ctx context.Context, settings *practice.Settings) error
}

// Notifier sends practice-facing emails. Optional.
type Notifier interface {
	SendPracticeVerified(ctx context.Context, settings *practice.Settings) error
}

// Auditor records admin actions. Optional.
type Auditor interface {
	RecordPracticeVerified(ctx context.Context, practiceID string, details any)
	RecordInviteIssued(ctx context.Context, practiceID string, details any)
}

// Service implements admin operations.
type Service struct {
	practices    PracticeStore
	notifier     Notifier
	auditor      Auditor
	inviteSecret string
	inviteTTL    time.Duration
	logger       *logging.Logger
	now          func() time.Time
}

// NewService constructs an admin service.
func NewService(practices PracticeStore, notifier Notifier, auditor Auditor, inviteSecret string, inviteTTL time.Duration, logger *logging.Logger) *Service {
	if practices == nil {
		panic("admin: practice store required")
	}
	if inviteTTL <= 0 {
		inviteTTL = 72 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		practices:    practices,
		notifier:     notifier,
		auditor:      auditor,
		inviteSecret: inviteSecret,
		inviteTTL:    inviteTTL,
		logger:       logger,
		now:          time.Now,
	}
}

// VerifyPractice marks a practice as verified so it can accept bookings.
// Verifying an already-verified practice is a no-op.
func (s *Service) VerifyPractice(ctx context.Context, practiceID string) (*practice.Settings, error) {
	settings, err := s.practices.Get(ctx, practiceID)
	if err != nil {
		return nil, err
	}
	if settings.Verified {
		return settings, nil
	}

	settings.Verified = true
	if err := s.practices.Set(ctx, settings); err != nil {
		return nil, fmt.Errorf("admin: verify practice: %w", err)
	}

	if s.auditor != nil {
		s.auditor.RecordPracticeVerified(ctx, practiceID, map[string]string{"name": settings.Name})
	}
	if s.notifier != nil {
		if err := s.notifier.SendPracticeVerified(ctx, settings); err != nil {
			s.logger.Error("verification email failed", "practice_id", practiceID, "error", err)
		}
	}
	s.logger.Info("practice verified", "practice_id", practiceID, "name", settings.Name)
	return settings, nil
}

// Invite is an issued practice-admin invite token.
type Invite struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueInvite creates a signed invite token binding the recipient email to
// the practice. The token expires after the configured TTL.
func (s *Service) IssueInvite(ctx context.Context, practiceID, email string) (*Invite, error) {
	if s.inviteSecret == "" {
		return nil, ErrInvitesDisabled
	}
	if _, err := s.practices.Get(ctx, practiceID); err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(s.inviteTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    inviteIssuer,
		Subject:   practiceID,
		Audience:  jwt.ClaimStrings{email},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.inviteSecret))
	if err != nil {
		return nil, fmt.Errorf("admin: sign invite: %w", err)
	}

	if s.auditor != nil {
		s.auditor.RecordInviteIssued(ctx, practiceID, map[string]string{"email": email})
	}
	s.logger.Info("invite issued", "practice_id", practiceID, "email", email, "expires_at", expiresAt)
	return &Invite{Token: token, ExpiresAt: expiresAt}, nil
}

// RedeemInvite validates an invite token and returns the practice it
// grants access to.
func (s *Service) RedeemInvite(tokenString string) (string, error) {
	if s.inviteSecret == "" {
		return "", ErrInvitesDisabled
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.inviteSecret), nil
	}, jwt.WithIssuer(inviteIssuer))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("admin: invalid invite token")
	}
	return claims.Subject, nil
}
