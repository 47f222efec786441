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

	"sellerflow/internal/identity"
	id "sellerflow/pkg/domain"
	dErrors "sellerflow/pkg/domain-errors"
	"sellerflow/pkg/testutil"
)

const testUserID = "5a6b7c8d-1234-4abc-9def-0123456789ab"

type fakeService struct {
	session  *identity.Session
	err      error
	retryErr error
}

func (f *fakeService) Start(ctx context.Context, userID id.UserID) (*identity.Session, error) {
	return f.session, f.err
}

func (f *fakeService) Status(ctx context.Context, userID id.UserID) (*identity.Session, error) {
	return f.session, f.err
}

func (f *fakeService) Retry(ctx context.Context, userID id.UserID) error {
	return f.retryErr
}

func newTestRouter(svc Service) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r
}

func TestStartReturnsSession(t *testing.T) {
	router := newTestRouter(&fakeService{session: &identity.Session{
		ID:               id.NewVerificationSessionID(),
		State:            identity.StatePending,
		VerificationLink: "https://verify.example.com/s/1",
		QRImageURL:       "https://qr.example.com/?data=x",
	}})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/identity/session", nil)
	rr := testutil.DoRequest(router, testutil.WithUserID(req, testUserID))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[identity.Session](t, rr)
	assert.Equal(t, identity.StatePending, resp.State)
	assert.NotEmpty(t, resp.VerificationLink)
	assert.NotEmpty(t, resp.QRImageURL)
}

func TestStartRequiresAuth(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/identity/session", nil)
	rr := testutil.DoRequest(router, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestStartSurfacesProviderOutage(t *testing.T) {
	router := newTestRouter(&fakeService{
		err: dErrors.New(dErrors.CodeUnavailable, "verification provider unavailable"),
	})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/identity/session", nil)
	rr := testutil.DoRequest(router, testutil.WithUserID(req, testUserID))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestStatusReportsIdle(t *testing.T) {
	router := newTestRouter(&fakeService{session: &identity.Session{State: identity.StateIdle}})

	req := testutil.NewRequest(t, http.MethodGet, "/identity/session")
	rr := testutil.DoRequest(router, testutil.WithUserID(req, testUserID))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[identity.Session](t, rr)
	assert.Equal(t, identity.StateIdle, resp.State)
}

func TestRetryRejectsWithoutFailure(t *testing.T) {
	router := newTestRouter(&fakeService{
		retryErr: dErrors.New(dErrors.CodeConflict, "no failed verification to retry"),
	})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/identity/session/retry", nil)
	rr := testutil.DoRequest(router, testutil.WithUserID(req, testUserID))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRetryClearsFailedSession(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/identity/session/retry", nil)
	rr := testutil.DoRequest(router, testutil.WithUserID(req, testUserID))

	assert.Equal(t, http.StatusNoContent, rr.Code)
}
