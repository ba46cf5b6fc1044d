package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics_PathLabelIsRoutePattern(t *testing.T) {
	server, _ := newTestServer(t, &mockGateway{})

	// Distinct agent IDs must not mint distinct label values.
	ids := []string{uuid.New().String(), uuid.New().String(), uuid.New().String()}
	for _, id := range ids {
		resp, err := http.Get(fmt.Sprintf("%s/v1/agents/%s", server.URL, id))
		require.NoError(t, err)
		resp.Body.Close()
	}

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	sawPattern := false
	for _, family := range families {
		if family.GetName() != "agent_gateway_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() != "path" {
					continue
				}
				if label.GetValue() == "/v1/agents/{id}" {
					sawPattern = true
				}
				for _, id := range ids {
					assert.NotContains(t, label.GetValue(), id,
						"raw path parameters must not become label values")
				}
			}
		}
	}
	assert.True(t, sawPattern, "expected the chi route pattern as the path label")
}

func TestHTTPMetrics_UnmatchedRouteCollapses(t *testing.T) {
	server, _ := newTestServer(t, &mockGateway{})

	resp, err := http.Get(server.URL + "/no/such/route")
	require.NoError(t, err)
	resp.Body.Close()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != "agent_gateway_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "path" {
					assert.NotEqual(t, "/no/such/route", label.GetValue())
				}
			}
		}
	}
}
