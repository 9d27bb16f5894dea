package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfiling_LabelsRequestContext(t *testing.T) {
	labels := map[string]string{}
	router := gin.New()
	router.Use(Profiling(true))
	router.POST("/entities/:entity/import", func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(key, value string) bool {
			labels[key] = value
			return true
		})
		c.Status(http.StatusAccepted)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/entities/products/import", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "/entities/:entity/import", labels["route"])
	assert.Equal(t, http.MethodPost, labels["method"])
	assert.Equal(t, "products", labels["entity"])
}

func TestProfiling_SkipsHealthAndDisabled(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		var labelled bool
		router := gin.New()
		router.Use(Profiling(enabled))
		handler := func(c *gin.Context) {
			pprof.ForLabels(c.Request.Context(), func(string, string) bool {
				labelled = true
				return false
			})
			c.Status(http.StatusOK)
		}
		router.GET("/health", handler)
		router.GET("/runs", handler)

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.False(t, labelled)

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/runs", nil))
		assert.Equal(t, enabled, labelled)
	}
}
