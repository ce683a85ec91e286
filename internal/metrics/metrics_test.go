package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddlewareLabelsByRoute(t *testing.T) {
	r := gin.New()
	r.Use(Middleware())
	r.GET("/products/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/products/:id", "204"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/42", nil))

	require.Equal(t, http.StatusNoContent, w.Code)
	after := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/products/:id", "204"))
	assert.Equal(t, before+1, after)
}

func TestRecordWrite(t *testing.T) {
	ok := testutil.ToFloat64(CatalogWrites.WithLabelValues("create", "ok"))
	failed := testutil.ToFloat64(CatalogWrites.WithLabelValues("create", "error"))

	RecordWrite("create", nil)
	RecordWrite("create", errors.New("boom"))

	assert.Equal(t, ok+1, testutil.ToFloat64(CatalogWrites.WithLabelValues("create", "ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(CatalogWrites.WithLabelValues("create", "error")))
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordLogin("success")

	r := gin.New()
	r.GET("/metrics", Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pricelist_auth_login_attempts_total")
}
