package scheduler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/uol/gobol/rip"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func statusServer(backend Backend) *httptest.Server {

	api := NewStatusAPI(backend, "")

	router := rip.NewCustomRouter()
	router.GET("/api/repair/status", api.status)

	return httptest.NewServer(router)
}

func TestStatusEndpoint(t *testing.T) {

	backend := &fakeBackend{
		datacenter: "dc1",
		statuses: []NodeStatus{
			{Node: "cass01", Datacenter: "dc1", Status: "12/256", UpdatedAt: time.Unix(1400000000, 0)},
			{Node: "cass02", Datacenter: "dc2", Status: StatusCompleted, UpdatedAt: time.Unix(1400000100, 0)},
		},
	}

	server := statusServer(backend)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/repair/status")
	assert.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var statuses []NodeStatus
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&statuses))
	assert.Len(t, statuses, 2)
	assert.Equal(t, "cass01", statuses[0].Node)
	assert.Equal(t, "12/256", statuses[0].Status)
}

func TestStatusEndpointEmpty(t *testing.T) {

	server := statusServer(&fakeBackend{datacenter: "dc1"})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/repair/status")
	assert.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var statuses []NodeStatus
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&statuses))
	assert.Empty(t, statuses)
}

func TestStatusAPIStopRightAfterStart(t *testing.T) {

	api := NewStatusAPI(&fakeBackend{datacenter: "dc1"}, "127.0.0.1:0")

	api.Start()
	assert.NotNil(t, api.server, "the server must exist before the listener goroutine runs")
	api.Stop()
}

func TestStatusEndpointBackendFailure(t *testing.T) {

	server := statusServer(&fakeBackend{failAll: true})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/repair/status")
	assert.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
