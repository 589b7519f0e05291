package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareGeneratesAndPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())

	var fromCtx, fromGin string
	r.GET("/", func(c *gin.Context) {
		fromGin = Value(c)
		fromCtx = FromContext(c.Request.Context())
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, fromGin)
	assert.Equal(t, fromGin, fromCtx)
	assert.Equal(t, fromGin, w.Header().Get(headerKey))
}

func TestMiddlewareKeepsCallerID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerKey, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc", w.Header().Get(headerKey))
}
