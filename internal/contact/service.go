// Package contact implements email/phone one-time-code verification and the
// uniqueness pre-check that blocks re-use of another seller's contact details.
package contact

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"time"

	"sellerflow/internal/audit"
	"sellerflow/internal/onboarding/models"
	"sellerflow/internal/platform/metrics"
	id "sellerflow/pkg/domain"
	dErrors "sellerflow/pkg/domain-errors"
	"sellerflow/pkg/platform/sentinel"
)

const codeLength = 6

// DraftAccess is the slice of the wizard controller the OTP flow needs: read
// the draft to find the target value, and flip the sticky verified flag on
// success. Implemented by the onboarding service so the mutation goes through
// its dirty-tracking.
type DraftAccess interface {
	GetDraft(ctx context.Context, userID id.UserID) (*models.Draft, error)
	MarkChannelVerified(ctx context.Context, userID id.UserID, channel models.Channel) error
}

// CodeSender dispatches a one-time code over the channel's delivery provider.
type CodeSender interface {
	Send(ctx context.Context, channel models.Channel, target, code string) error
}

// CodeStore persists pending codes and resend cooldowns. GetCode returns
// sentinel.ErrNotFound when no live code exists (missing or expired).
type CodeStore interface {
	SaveCode(ctx context.Context, userID id.UserID, channel models.Channel, code string, ttl time.Duration) error
	GetCode(ctx context.Context, userID id.UserID, channel models.Channel) (string, error)
	DeleteCode(ctx context.Context, userID id.UserID, channel models.Channel) error
	IncrementAttempts(ctx context.Context, userID id.UserID, channel models.Channel) (int, error)
	SetCooldown(ctx context.Context, userID id.UserID, channel models.Channel, d time.Duration) error
	CooldownRemaining(ctx context.Context, userID id.UserID, channel models.Channel) (time.Duration, error)
}

// Service owns the OTP send/verify flow.
type Service struct {
	drafts   DraftAccess
	codes    CodeStore
	sender   CodeSender
	cooldown time.Duration
	codeTTL  time.Duration

	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher audit.Publisher
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// New constructs the OTP service.
func New(drafts DraftAccess, codes CodeStore, sender CodeSender, cooldown, codeTTL time.Duration, opts ...Option) (*Service, error) {
	if drafts == nil || codes == nil || sender == nil {
		return nil, errors.New("drafts, codes, and sender are required")
	}
	s := &Service{
		drafts:   drafts,
		codes:    codes,
		sender:   sender,
		cooldown: cooldown,
		codeTTL:  codeTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SendCode generates and dispatches a one-time code for the channel's current
// draft value. Preconditions: value present and well-formed, channel not yet
// verified, no active resend cooldown.
func (s *Service) SendCode(ctx context.Context, userID id.UserID, channel models.Channel) error {
	if !channel.IsValid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown channel %q", channel)
	}

	draft, err := s.drafts.GetDraft(ctx, userID)
	if err != nil {
		return err
	}

	target, verified := channelState(draft, channel)
	if target == "" {
		return dErrors.Newf(dErrors.CodeBadRequest, "%s is empty", channel)
	}
	if channel == models.ChannelEmail && !models.ValidEmail(target) {
		return dErrors.New(dErrors.CodeInvalidInput, "email is malformed")
	}
	if channel == models.ChannelPhone && !models.ValidPhone(target) {
		return dErrors.New(dErrors.CodeInvalidInput, "phone must be 10 digits")
	}
	if verified {
		return dErrors.Newf(dErrors.CodeConflict, "%s is already verified", channel)
	}

	remaining, err := s.codes.CooldownRemaining(ctx, userID, channel)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check resend cooldown")
	}
	if remaining > 0 {
		return dErrors.Newf(dErrors.CodeConflict, "resend available in %ds", int(remaining.Seconds()))
	}

	code, err := generateCode(codeLength)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate code")
	}
	if err := s.codes.SaveCode(ctx, userID, channel, code, s.codeTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store code")
	}
	if err := s.sender.Send(ctx, channel, target, code); err != nil {
		// Leave state unchanged: the stored code expires on its own and no
		// cooldown is armed, so the user can retry immediately.
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to deliver code")
	}
	if err := s.codes.SetCooldown(ctx, userID, channel, s.cooldown); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to arm resend cooldown")
	}

	if s.metrics != nil {
		s.metrics.OTPCodesSent.WithLabelValues(string(channel)).Inc()
	}
	audit.Log(ctx, s.logger, s.publisher, audit.ActionOTPSent,
		"user_id", userID,
		"channel", string(channel),
	)
	return nil
}

// VerifyCode checks the submitted code. Success flips the channel's sticky
// verified flag; failure leaves verified state untouched. No client-side
// attempt cap is enforced, but attempts are counted for abuse monitoring.
func (s *Service) VerifyCode(ctx context.Context, userID id.UserID, channel models.Channel, code string) error {
	if !channel.IsValid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown channel %q", channel)
	}
	if len(code) != codeLength {
		return dErrors.Newf(dErrors.CodeInvalidInput, "code must be %d digits", codeLength)
	}

	stored, err := s.codes.GetCode(ctx, userID, channel)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "no active code; request a new one")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load code")
	}

	if stored != code {
		attempts, _ := s.codes.IncrementAttempts(ctx, userID, channel)
		if s.metrics != nil {
			s.metrics.OTPCodesVerified.WithLabelValues(string(channel), "mismatch").Inc()
		}
		s.logger.WarnContext(ctx, "otp mismatch",
			"user_id", userID.String(),
			"channel", channel,
			"attempts", attempts,
		)
		return dErrors.New(dErrors.CodeInvalidInput, "incorrect code")
	}

	if err := s.codes.DeleteCode(ctx, userID, channel); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume code")
	}
	if err := s.drafts.MarkChannelVerified(ctx, userID, channel); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.OTPCodesVerified.WithLabelValues(string(channel), "ok").Inc()
	}
	audit.Log(ctx, s.logger, s.publisher, audit.ActionOTPVerified,
		"user_id", userID,
		"channel", string(channel),
	)
	return nil
}

func channelState(d *models.Draft, channel models.Channel) (target string, verified bool) {
	if channel == models.ChannelEmail {
		return d.Email, d.EmailVerified
	}
	return d.Phone, d.PhoneVerified
}

// generateCode returns n random decimal digits.
func generateCode(n int) (string, error) {
	const digits = "0123456789"
	b := make([]byte, n)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		b[i] = digits[num.Int64()]
	}
	return string(b), nil
}
