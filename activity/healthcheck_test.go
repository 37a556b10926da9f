package activity

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	connectivityErr error
	monitorErr      error
}

func (m *mockChecker) ConnectivityCheck() error {
	return m.connectivityErr
}

func (m *mockChecker) MonitorCheck() error {
	return m.monitorErr
}

func TestGTG_Healthy(t *testing.T) {
	hc := NewHealthCheck(&mockChecker{}, &mockChecker{}, "Activity Payload Mapper", "upp-activity-payload-mapper")

	status := hc.GTG()
	assert.True(t, status.GoodToGo)
}

func TestGTG_ProducerUnreachable(t *testing.T) {
	hc := NewHealthCheck(&mockChecker{connectivityErr: errors.New("producer down")}, &mockChecker{}, "Activity Payload Mapper", "upp-activity-payload-mapper")

	status := hc.GTG()
	assert.False(t, status.GoodToGo)
	assert.Equal(t, "producer down", status.Message)
}

func TestGTG_ConsumerLagDoesNotAffectGTG(t *testing.T) {
	hc := NewHealthCheck(&mockChecker{}, &mockChecker{monitorErr: errors.New("lagging")}, "Activity Payload Mapper", "upp-activity-payload-mapper")

	assert.True(t, hc.GTG().GoodToGo)
}

func TestHealth_ReportsChecks(t *testing.T) {
	hc := NewHealthCheck(&mockChecker{}, &mockChecker{monitorErr: errors.New("lagging")}, "Activity Payload Mapper", "upp-activity-payload-mapper")

	req := httptest.NewRequest(http.MethodGet, "/__health", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	hc.Health()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		SystemCode string `json:"systemCode"`
		Checks     []struct {
			ID string `json:"id"`
			OK bool   `json:"ok"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, "upp-activity-payload-mapper", result.SystemCode)
	checks := map[string]bool{}
	for _, c := range result.Checks {
		checks[c.ID] = c.OK
	}
	assert.Equal(t, map[string]bool{
		"read-message-queue-reachable":  true,
		"write-message-queue-reachable": true,
		"read-message-queue-lagging":    false,
	}, checks)
}
