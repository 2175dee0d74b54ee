package cmd

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newServer(builtinConfig(), prometheus.NewRegistry())
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

type apiResult struct {
	RequestedPolicy string `json:"chosenAlgorithm"`
	UsedPolicy      string `json:"usedAlgorithm"`
	SwitchReason    string `json:"reasonSwitched"`
	GanttChart      []struct {
		PID   int     `json:"pid"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"ganttChart"`
	Metrics struct {
		AvgWaitingTime float64 `json:"avgWaitingTime"`
	} `json:"metrics"`
	Processes []struct {
		PID            int     `json:"pid"`
		CompletionTime float64 `json:"completionTime"`
	} `json:"processes"`
	Trace *struct {
		Steps []json.RawMessage `json:"steps"`
	} `json:"trace"`
}

func TestServer_Simulate_FCFS(t *testing.T) {
	// GIVEN three processes submitted with the loose field spellings
	app := newTestApp(t)
	body := `{"algorithm": "fcfs", "processes": [
		{"pid": 1, "arrivalTime": 0, "burstTime": 4},
		{"id": 2, "arrival": 1, "burst": "3"},
		{"pid": 3, "at": 2, "bt": 1}
	]}`

	// WHEN simulated
	status, data := do(t, app, http.MethodPost, "/api/v1/simulate", body)

	// THEN FCFS runs them in arrival order
	require.Equal(t, http.StatusOK, status, string(data))
	var res apiResult
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "fcfs", res.UsedPolicy)
	require.Len(t, res.GanttChart, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{res.GanttChart[0].PID, res.GanttChart[1].PID, res.GanttChart[2].PID})
	assert.Equal(t, 8.0, res.GanttChart[2].End)
	assert.Nil(t, res.Trace)
}

func TestServer_Simulate_Preset(t *testing.T) {
	app := newTestApp(t)

	status, data := do(t, app, http.MethodPost, "/api/v1/simulate",
		`{"algorithm": "fcfs", "preset": "convoy-effect", "timeQuantum": 2, "explain": true}`)

	require.Equal(t, http.StatusOK, status, string(data))
	var res apiResult
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "fcfs", res.RequestedPolicy)
	assert.Equal(t, "round_robin", res.UsedPolicy)
	assert.Contains(t, res.SwitchReason, "convoy effect")
	require.NotNil(t, res.Trace)
	assert.Len(t, res.Trace.Steps, len(res.GanttChart))
}

func TestServer_Simulate_CustomExpression(t *testing.T) {
	// GIVEN a score expression favouring the highest pid
	app := newTestApp(t)
	body := `{"customExpr": "-pid", "processes": [
		{"pid": 1, "arrival": 0, "burst": 2},
		{"pid": 2, "arrival": 0, "burst": 2}
	]}`

	status, data := do(t, app, http.MethodPost, "/api/v1/simulate", body)

	// THEN the custom policy runs P2 first
	require.Equal(t, http.StatusOK, status, string(data))
	var res apiResult
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "custom", res.UsedPolicy)
	require.NotEmpty(t, res.GanttChart)
	assert.Equal(t, 2, res.GanttChart[0].PID)
}

func TestServer_Simulate_BadRequests(t *testing.T) {
	app := newTestApp(t)
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"algorithm": `},
		{"empty workload", `{"algorithm": "fcfs", "processes": []}`},
		{"no workload", `{"algorithm": "fcfs"}`},
		{"duplicate pid", `{"processes": [{"pid": 1, "burst": 1}, {"pid": 1, "burst": 2}]}`},
		{"processes and preset", `{"preset": "rr-heavy", "processes": [{"pid": 1, "burst": 1}]}`},
		{"unknown preset", `{"preset": "nope"}`},
		{"expression with other policy", `{"algorithm": "sjf", "customExpr": "remaining", "preset": "rr-heavy"}`},
		{"bad expression", `{"customExpr": "remaining +", "preset": "rr-heavy"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, data := do(t, app, http.MethodPost, "/api/v1/simulate", tc.body)
			assert.Equal(t, http.StatusBadRequest, status, string(data))
			var e map[string]string
			require.NoError(t, json.Unmarshal(data, &e))
			assert.NotEmpty(t, e["error"])
		})
	}
}

func TestServer_Compare_KeepsOrder(t *testing.T) {
	app := newTestApp(t)

	status, data := do(t, app, http.MethodPost, "/api/v1/compare",
		`{"algorithms": ["sjf", "fcfs", "rr"], "preset": "sjf-friendly", "timeQuantum": 2}`)

	require.Equal(t, http.StatusOK, status, string(data))
	var out struct {
		Results []apiResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Results, 3)
	assert.Equal(t, "sjf", out.Results[0].RequestedPolicy)
	assert.Equal(t, "fcfs", out.Results[1].RequestedPolicy)
	assert.Equal(t, "round_robin", out.Results[2].RequestedPolicy)
}

func TestServer_Compare_DefaultsToEveryPolicy(t *testing.T) {
	app := newTestApp(t)

	status, data := do(t, app, http.MethodPost, "/api/v1/compare", `{"preset": "rr-heavy"}`)

	require.Equal(t, http.StatusOK, status, string(data))
	var out struct {
		Results []apiResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Len(t, out.Results, len(defaultComparePolicies()))
}

func TestServer_Presets(t *testing.T) {
	app := newTestApp(t)

	status, data := do(t, app, http.MethodGet, "/api/v1/presets", "")

	require.Equal(t, http.StatusOK, status)
	var presets []struct {
		Name      string            `json:"name"`
		Processes []json.RawMessage `json:"processes"`
	}
	require.NoError(t, json.Unmarshal(data, &presets))
	require.Len(t, presets, 4)
	assert.Equal(t, "Convoy effect", presets[0].Name)
}

func TestServer_MetricsHealthAndNotFound(t *testing.T) {
	app := newTestApp(t)
	status, _ := do(t, app, http.MethodPost, "/api/v1/simulate", `{"preset": "rr-heavy", "algorithm": "rr"}`)
	require.Equal(t, http.StatusOK, status)

	status, data := do(t, app, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), "cpusched_simulations_total")
	assert.Contains(t, string(data), "cpusched_http_requests_total")

	status, data = do(t, app, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(data))

	status, data = do(t, app, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(data), `"error"`)
}
