package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellerflow/internal/onboarding/models"
	id "sellerflow/pkg/domain"
	dErrors "sellerflow/pkg/domain-errors"
	"sellerflow/pkg/testutil"
)

const testUserID = "5a6b7c8d-1234-4abc-9def-0123456789ab"

type fakeService struct {
	sendErr    error
	verifyErr  error
	gotChannel models.Channel
	gotCode    string
}

func (f *fakeService) SendCode(ctx context.Context, userID id.UserID, channel models.Channel) error {
	f.gotChannel = channel
	return f.sendErr
}

func (f *fakeService) VerifyCode(ctx context.Context, userID id.UserID, channel models.Channel, code string) error {
	f.gotChannel = channel
	f.gotCode = code
	return f.verifyErr
}

func newTestRouter(svc Service) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r
}

func TestSendRequiresAuth(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/contact/send",
		map[string]string{"channel": "email"})
	rr := testutil.DoRequest(router, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSendForwardsChannel(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/contact/send",
		map[string]string{"channel": "phone"})
	rr := testutil.DoRequest(router, testutil.WithUserID(req, testUserID))

	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, models.ChannelPhone, svc.gotChannel)
}

func TestSendSurfacesCooldown(t *testing.T) {
	svc := &fakeService{sendErr: dErrors.New(dErrors.CodeConflict, "resend available in 42s")}
	router := newTestRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/contact/send",
		map[string]string{"channel": "email"})
	rr := testutil.DoRequest(router, testutil.WithUserID(req, testUserID))

	assert.Equal(t, http.StatusConflict, rr.Code)
	body := testutil.UnmarshalErrorResponse(t, rr)
	assert.Equal(t, "resend available in 42s", body["error_description"])
}

func TestVerifyForwardsCode(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/contact/verify",
		map[string]string{"channel": "email", "code": "123456"})
	rr := testutil.DoRequest(router, testutil.WithUserID(req, testUserID))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.ChannelEmail, svc.gotChannel)
	assert.Equal(t, "123456", svc.gotCode)
}

func TestVerifySurfacesMismatch(t *testing.T) {
	svc := &fakeService{verifyErr: dErrors.New(dErrors.CodeInvalidInput, "incorrect code")}
	router := newTestRouter(svc)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/contact/verify",
		map[string]string{"channel": "email", "code": "000000"})
	rr := testutil.DoRequest(router, testutil.WithUserID(req, testUserID))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
