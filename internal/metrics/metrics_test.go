package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(EventOperations.WithLabelValues("create"))
	EventOperations.WithLabelValues("create").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(EventOperations.WithLabelValues("create")))
}

func TestHandlerExposesNamespace(t *testing.T) {
	UsersRegistered.WithLabelValues("attendee").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "virtual_events_users_registered_total")
	assert.Contains(t, string(body), "go_goroutines")
}
