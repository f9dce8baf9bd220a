package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SetOnline(3)
		m.RecordEvent("newMessage", OutcomeDelivered)
		m.RecordActivationSent()
	})
}

func TestRecordEvent(t *testing.T) {
	m := New()
	m.RecordEvent("newMessage", OutcomeDelivered)
	m.RecordEvent("newMessage", OutcomeDelivered)
	m.RecordEvent("notification", OutcomeOffline)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RealtimeEvents.WithLabelValues("newMessage", OutcomeDelivered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RealtimeEvents.WithLabelValues("notification", OutcomeOffline)))

	m.SetOnline(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.OnlineUsers))
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/post/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/post/42", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/post/:id", "200")))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "agrocommunity_http_requests_total")
}
