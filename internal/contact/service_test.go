package contact

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellerflow/internal/onboarding/models"
	id "sellerflow/pkg/domain"
	dErrors "sellerflow/pkg/domain-errors"
	"sellerflow/pkg/testutil"
)

// fakeDrafts is a hand-rolled DraftAccess over a single draft.
type fakeDrafts struct {
	mu    sync.Mutex
	draft *models.Draft
}

func (f *fakeDrafts) GetDraft(ctx context.Context, userID id.UserID) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.Clone(), nil
}

func (f *fakeDrafts) MarkChannelVerified(ctx context.Context, userID id.UserID, channel models.Channel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch channel {
	case models.ChannelEmail:
		f.draft.EmailVerified = true
	case models.ChannelPhone:
		f.draft.PhoneVerified = true
	}
	return nil
}

func (f *fakeDrafts) emailVerified() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.EmailVerified
}

// recordingSender captures the last dispatched code.
type recordingSender struct {
	mu       sync.Mutex
	lastCode string
	sends    int
}

func (r *recordingSender) Send(ctx context.Context, channel models.Channel, target, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastCode = code
	r.sends++
	return nil
}

func (r *recordingSender) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastCode
}

func newTestService(t *testing.T) (*Service, *fakeDrafts, *recordingSender, *InMemoryCodeStore, id.UserID) {
	t.Helper()

	userID, err := id.ParseUserID("5a6b7c8d-1234-4abc-9def-0123456789ab")
	require.NoError(t, err)

	drafts := &fakeDrafts{draft: &models.Draft{
		UserID: userID,
		Email:  "asha@example.com",
		Phone:  "9876543210",
	}}
	sender := &recordingSender{}
	codes := NewInMemoryCodeStore()

	svc, err := New(drafts, codes, sender, 60*time.Second, 10*time.Minute)
	require.NoError(t, err)
	return svc, drafts, sender, codes, userID
}

func TestSendThenVerifyFlow(t *testing.T) {
	svc, drafts, sender, _, userID := newTestService(t)
	ctx := context.Background()

	testutil.Given(t, "a draft with an unverified email", func(t *testing.T) {
		testutil.When(t, "a code is sent and typed back correctly", func(t *testing.T) {
			require.NoError(t, svc.SendCode(ctx, userID, models.ChannelEmail))
			code := sender.last()
			require.Len(t, code, codeLength)

			require.NoError(t, svc.VerifyCode(ctx, userID, models.ChannelEmail, code))

			testutil.Then(t, "the email channel becomes verified", func(t *testing.T) {
				assert.True(t, drafts.emailVerified())
			})
		})
	})
}

func TestSendCodeCooldownBlocksResend(t *testing.T) {
	svc, _, sender, _, userID := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, userID, models.ChannelEmail))

	err := svc.SendCode(ctx, userID, models.ChannelEmail)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, 1, sender.sends, "the second send never reaches the provider")
}

func TestSendCodeRejectsVerifiedChannel(t *testing.T) {
	svc, drafts, _, _, userID := newTestService(t)
	drafts.draft.EmailVerified = true

	err := svc.SendCode(context.Background(), userID, models.ChannelEmail)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestSendCodeRejectsMalformedTargets(t *testing.T) {
	svc, drafts, _, _, userID := newTestService(t)
	ctx := context.Background()

	drafts.draft.Email = "not-an-email"
	err := svc.SendCode(ctx, userID, models.ChannelEmail)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	drafts.draft.Phone = "12345"
	err = svc.SendCode(ctx, userID, models.ChannelPhone)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	drafts.draft.Phone = ""
	err = svc.SendCode(ctx, userID, models.ChannelPhone)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestVerifyCodeWrongCode(t *testing.T) {
	svc, drafts, sender, _, userID := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, userID, models.ChannelEmail))

	wrong := "000000"
	if sender.last() == wrong {
		wrong = "000001"
	}
	err := svc.VerifyCode(ctx, userID, models.ChannelEmail, wrong)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.False(t, drafts.emailVerified())

	// The stored code survives a mismatch; the right code still works.
	require.NoError(t, svc.VerifyCode(ctx, userID, models.ChannelEmail, sender.last()))
	assert.True(t, drafts.emailVerified())
}

func TestVerifyCodeWithoutActiveCode(t *testing.T) {
	svc, _, _, _, userID := newTestService(t)

	err := svc.VerifyCode(context.Background(), userID, models.ChannelEmail, "123456")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestVerifyCodeIsSingleUse(t *testing.T) {
	svc, _, sender, _, userID := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, userID, models.ChannelPhone))
	code := sender.last()
	require.NoError(t, svc.VerifyCode(ctx, userID, models.ChannelPhone, code))

	err := svc.VerifyCode(ctx, userID, models.ChannelPhone, code)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound), "a consumed code is gone")
}

func TestVerifyCodeExpires(t *testing.T) {
	userID, err := id.ParseUserID("5a6b7c8d-1234-4abc-9def-0123456789ab")
	require.NoError(t, err)

	drafts := &fakeDrafts{draft: &models.Draft{UserID: userID, Email: "asha@example.com"}}
	sender := &recordingSender{}

	now := time.Now()
	codes := NewInMemoryCodeStore().WithClock(func() time.Time { return now })

	svc, err := New(drafts, codes, sender, 60*time.Second, 10*time.Minute)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.SendCode(ctx, userID, models.ChannelEmail))
	code := sender.last()

	now = now.Add(11 * time.Minute)
	verifyErr := svc.VerifyCode(ctx, userID, models.ChannelEmail, code)
	require.Error(t, verifyErr)
	assert.True(t, dErrors.HasCode(verifyErr, dErrors.CodeNotFound), "expired codes read as absent")
}
