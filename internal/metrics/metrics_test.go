package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/places/tabs/offers", "/places/tabs/offers"},
		{"/places/tabs/offers/edit/0b9d2c3e-4f8a-4e1b-9c6d-7a2f5e8b1c3d", "/places/tabs/offers/edit/{id}"},
		{"/images/0B9D2C3E-4F8A-4E1B-9C6D-7A2F5E8B1C3D.png", "/images/{id}.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.in))
	}
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/places/tabs/offers/new", "422")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/places/tabs/offers/new", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Equal(t, float64(0), testutil.ToFloat64(HTTPRequestsInFlight))
}

func TestMiddlewareSkipsMetricsEndpoint(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/metrics", "200")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, before, testutil.ToFloat64(counter))
}

func TestRecordPlaceOp(t *testing.T) {
	ok := PlaceOperations.WithLabelValues("add", "success")
	failed := PlaceOperations.WithLabelValues("add", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordPlaceOp("add", nil)
	RecordPlaceOp("add", errors.New("boom"))
	RecordPlaceOp("add", nil)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestRecordUpload(t *testing.T) {
	failed := ImageUploads.WithLabelValues("image/png", "error")
	before := testutil.ToFloat64(failed)

	RecordUpload("image/png", 10, errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(failed))
}
