package rfq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/wholesale-storefront/api/middleware"
	rfqsvc "github.com/angelmondragon/wholesale-storefront/internal/rfq"
	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
)

type stubService struct {
	calls       int
	lastSession string
	lastForm    rfqsvc.Form
	err         error
}

func (s *stubService) Submit(_ context.Context, sessionID string, form rfqsvc.Form) (*rfqsvc.Submission, error) {
	s.calls++
	s.lastSession = sessionID
	s.lastForm = form
	if s.err != nil {
		return nil, s.err
	}
	return &rfqsvc.Submission{ID: uuid.New(), Status: enums.QuoteRequestStatusNew, SubmittedAt: time.Now()}, nil
}

const formBody = `{"company_name":"Acme","country":"US","target_quantity":500,"incoterm":"FOB","required_certifications":"CE","notes":""}`

func sessionRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithCartSession(req.Context(), "session-1"))
}

func decodePanel(t *testing.T, rec *httptest.ResponseRecorder) rfqsvc.Panel {
	t.Helper()
	var env struct {
		Data rfqsvc.Panel `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

func TestPanelOpenSubmitCycle(t *testing.T) {
	svc := &stubService{}
	registry := rfqsvc.NewRegistry(svc)

	rec := httptest.NewRecorder()
	PanelOpen(registry, nil).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/rfq/open", `{"product_id":4}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	panel := decodePanel(t, rec)
	assert.Equal(t, rfqsvc.StateOpen, panel.State)
	require.NotNil(t, panel.ProductID)
	assert.Equal(t, 4, *panel.ProductID)

	rec = httptest.NewRecorder()
	PanelSubmit(registry, nil).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/rfq/submit", formBody))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "session-1", svc.lastSession)
	require.NotNil(t, svc.lastForm.ProductID)
	assert.Equal(t, 4, *svc.lastForm.ProductID)

	rec = httptest.NewRecorder()
	PanelFetch(registry, nil).ServeHTTP(rec, sessionRequest(http.MethodGet, "/api/v1/rfq", ""))
	panel = decodePanel(t, rec)
	assert.Equal(t, rfqsvc.StateClosed, panel.State)
	assert.Nil(t, panel.ProductID)
}

func TestPanelSubmitWhileClosed(t *testing.T) {
	svc := &stubService{}
	registry := rfqsvc.NewRegistry(svc)

	rec := httptest.NewRecorder()
	PanelSubmit(registry, nil).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/rfq/submit", formBody))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 0, svc.calls)
}

func TestPanelSubmitFailureKeepsDraft(t *testing.T) {
	svc := &stubService{err: pkgerrors.New(pkgerrors.CodeDependency, "store quote request")}
	registry := rfqsvc.NewRegistry(svc)

	PanelOpen(registry, nil).ServeHTTP(httptest.NewRecorder(), sessionRequest(http.MethodPost, "/api/v1/rfq/open", ""))

	rec := httptest.NewRecorder()
	PanelSubmit(registry, nil).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/rfq/submit", formBody))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	PanelFetch(registry, nil).ServeHTTP(rec, sessionRequest(http.MethodGet, "/api/v1/rfq", ""))
	panel := decodePanel(t, rec)
	assert.Equal(t, rfqsvc.StateOpen, panel.State)
	require.NotNil(t, panel.Draft)
	assert.Equal(t, "Acme", panel.Draft.CompanyName)
}

func TestPanelClose(t *testing.T) {
	registry := rfqsvc.NewRegistry(&stubService{})
	PanelOpen(registry, nil).ServeHTTP(httptest.NewRecorder(), sessionRequest(http.MethodPost, "/api/v1/rfq/open", `{"product_id":9}`))

	rec := httptest.NewRecorder()
	PanelClose(registry, nil).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/rfq/close", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, rfqsvc.StateClosed, decodePanel(t, rec).State)
}

func TestPanelOpenRejectsBadProduct(t *testing.T) {
	registry := rfqsvc.NewRegistry(&stubService{})
	rec := httptest.NewRecorder()
	PanelOpen(registry, nil).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/rfq/open", `{"product_id":-1}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDirectSubmit(t *testing.T) {
	svc := &stubService{}
	rec := httptest.NewRecorder()
	Submit(svc, nil).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/rfq", formBody))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, "Acme", svc.lastForm.CompanyName)
	assert.Equal(t, 500, svc.lastForm.TargetQuantity)
}
