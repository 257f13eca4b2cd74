package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soochnamitra/dash-core/pkg/metrics"
	"github.com/soochnamitra/dash-core/pkg/models/api"
	"github.com/soochnamitra/dash-core/pkg/models/domain"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, metrics.NewForTesting())
}

func TestClient_States(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/states", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(api.StatesResponse{
			States: []string{"KARNATAKA", "KERALA"},
			Source: "cache",
		}))
	}))
	defer srv.Close()

	states, err := testClient(srv.URL).States(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"KARNATAKA", "KERALA"}, states)
}

func TestClient_Districts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/districts", r.URL.Path)
		assert.Equal(t, "KARNATAKA", r.URL.Query().Get("state"))
		require.NoError(t, json.NewEncoder(w).Encode(api.DistrictsResponse{
			State:     "KARNATAKA",
			Districts: []string{"BENGALURU URBAN", "MYSURU"},
		}))
	}))
	defer srv.Close()

	districts, err := testClient(srv.URL).Districts(context.Background(), "KARNATAKA")
	require.NoError(t, err)
	assert.Equal(t, []string{"BENGALURU URBAN", "MYSURU"}, districts)
}

func TestClient_Districts_EmptyStateRejectedLocally(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Districts(context.Background(), "")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "state", verr.Field)
	assert.Zero(t, calls, "validation failure must not reach the network")
}

func TestClient_Dashboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/dashboard", r.URL.Path)
		assert.Equal(t, "12", r.URL.Query().Get("months"))
		require.NoError(t, json.NewEncoder(w).Encode(api.DashboardResponse{
			State:    "KARNATAKA",
			District: "MYSURU",
			KPIs: api.KPIPayload{
				TotalExpenditure:      "1,234.50",
				TotalHouseholdsWorked: 42,
				TotalPersondays:       100,
				RecordsCount:          2,
			},
			Series: []api.SeriesRecord{
				{Month: "Apr", FinYear: "2023-24", Expenditure: "500", Households: 5},
			},
			FromCache:   true,
			LastUpdated: "2025-10-01T12:00:00",
		}))
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).Dashboard(context.Background(), "KARNATAKA", "MYSURU", 12)
	require.NoError(t, err)
	assert.Equal(t, "MYSURU", resp.District)
	assert.True(t, resp.FromCache)
	require.Len(t, resp.Series, 1)
	assert.Equal(t, "Apr", resp.Series[0].Month)
}

func TestClient_Refresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/refresh", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	require.NoError(t, testClient(srv.URL).Refresh(context.Background()))
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(api.HealthResponse{Status: "ok"}))
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestClient_NonOKStatusIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no data found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).States(context.Background())

	var terr *domain.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "states", terr.Op)
	assert.Equal(t, http.StatusNotFound, terr.Status)
}

func TestClient_ConnectionFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	_, err := testClient(srv.URL).States(context.Background())

	var terr *domain.TransportError
	require.True(t, errors.As(err, &terr))
	assert.NotNil(t, terr.Err)
}
