package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/soochnamitra/dash-core/pkg/models/api"
	"github.com/soochnamitra/dash-core/pkg/models/domain"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) States(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockService) Districts(ctx context.Context, state string) ([]string, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockService) Dashboard(ctx context.Context, state, district string, months int) (*api.Dashboard, error) {
	args := m.Called(ctx, state, district, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.Dashboard), args.Error(1)
}

func (m *mockService) Locate(ctx context.Context, coords domain.Coordinates) (*api.LocateResponse, error) {
	args := m.Called(ctx, coords)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.LocateResponse), args.Error(1)
}

func (m *mockService) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockService) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockService) DefaultMonths() int {
	args := m.Called()
	return args.Int(0)
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var v T
		err := json.Unmarshal(data, &v)
		return v, err
	}
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	mockSvc := new(mockService)

	router := ConfigureRouter(Config{
		Dependencies: Dependencies{
			Dashboard: mockSvc,
			Logger:    logger,
		},
	})
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setupMocks     func()
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:   "ListStates",
			method: http.MethodGet,
			path:   "/api/v1/states",
			setupMocks: func() {
				mockSvc.On("States", mock.Anything).
					Return([]string{"KARNATAKA", "KERALA"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expected:       api.StatesResponse{States: []string{"KARNATAKA", "KERALA"}},
			parseResponse:  unmarshalResponse[api.StatesResponse](),
		},
		{
			name:   "ListStates_UpstreamFailure",
			method: http.MethodGet,
			path:   "/api/v1/states",
			setupMocks: func() {
				mockSvc.On("States", mock.Anything).
					Return(nil, &domain.TransportError{Op: "states", Status: 503}).Once()
			},
			expectedStatus: http.StatusBadGateway,
			expected:       api.ErrorResponse{Error: "states: upstream returned status 503"},
			parseResponse:  unmarshalResponse[api.ErrorResponse](),
		},
		{
			name:   "ListDistricts",
			method: http.MethodGet,
			path:   "/api/v1/states/KARNATAKA/districts",
			setupMocks: func() {
				mockSvc.On("Districts", mock.Anything, "KARNATAKA").
					Return([]string{"BENGALURU URBAN", "MYSURU"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expected: api.DistrictsResponse{
				State:     "KARNATAKA",
				Districts: []string{"BENGALURU URBAN", "MYSURU"},
			},
			parseResponse: unmarshalResponse[api.DistrictsResponse](),
		},
		{
			name:   "GetDashboard",
			method: http.MethodGet,
			path:   "/api/v1/dashboard?state=KARNATAKA&district=MYSURU&months=6",
			setupMocks: func() {
				mockSvc.On("DefaultMonths").Return(12).Once()
				mockSvc.On("Dashboard", mock.Anything, "KARNATAKA", "MYSURU", 6).
					Return(&api.Dashboard{State: "KARNATAKA", District: "MYSURU"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expected:       api.Dashboard{State: "KARNATAKA", District: "MYSURU"},
			parseResponse:  unmarshalResponse[api.Dashboard](),
		},
		{
			name:   "GetDashboard_DefaultMonths",
			method: http.MethodGet,
			path:   "/api/v1/dashboard?state=KARNATAKA&district=MYSURU",
			setupMocks: func() {
				mockSvc.On("DefaultMonths").Return(12).Once()
				mockSvc.On("Dashboard", mock.Anything, "KARNATAKA", "MYSURU", 12).
					Return(&api.Dashboard{State: "KARNATAKA", District: "MYSURU"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expected:       api.Dashboard{State: "KARNATAKA", District: "MYSURU"},
			parseResponse:  unmarshalResponse[api.Dashboard](),
		},
		{
			name:   "GetDashboard_MissingDistrict",
			method: http.MethodGet,
			path:   "/api/v1/dashboard?state=KARNATAKA&months=12",
			setupMocks: func() {
				mockSvc.On("DefaultMonths").Return(12).Once()
				mockSvc.On("Dashboard", mock.Anything, "KARNATAKA", "", 12).
					Return(nil, &domain.ValidationError{Field: "district", Reason: "must not be empty"}).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expected:       api.ErrorResponse{Error: "invalid district: must not be empty"},
			parseResponse:  unmarshalResponse[api.ErrorResponse](),
		},
		{
			name:   "Locate",
			method: http.MethodPost,
			path:   "/api/v1/locate",
			body:   `{"latitude": 12.9716, "longitude": 77.5946}`,
			setupMocks: func() {
				mockSvc.On("Locate", mock.Anything, domain.Coordinates{Latitude: 12.9716, Longitude: 77.5946}).
					Return(&api.LocateResponse{
						DetectedState:    "Karnataka",
						DetectedDistrict: "Bengaluru Urban",
						MatchedState:     "KARNATAKA",
						MatchedDistrict:  "BENGALURU URBAN",
						StateMatched:     true,
						DistrictMatched:  true,
					}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expected: api.LocateResponse{
				DetectedState:    "Karnataka",
				DetectedDistrict: "Bengaluru Urban",
				MatchedState:     "KARNATAKA",
				MatchedDistrict:  "BENGALURU URBAN",
				StateMatched:     true,
				DistrictMatched:  true,
			},
			parseResponse: unmarshalResponse[api.LocateResponse](),
		},
		{
			name:           "Locate_MalformedBody",
			method:         http.MethodPost,
			path:           "/api/v1/locate",
			body:           `{"latitude": `,
			setupMocks:     func() {},
			expectedStatus: http.StatusBadRequest,
			expected:       api.ErrorResponse{Error: "invalid body: malformed JSON"},
			parseResponse:  unmarshalResponse[api.ErrorResponse](),
		},
		{
			name:   "Health",
			method: http.MethodGet,
			path:   "/api/v1/health",
			setupMocks: func() {
				mockSvc.On("Health", mock.Anything).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Refresh",
			method: http.MethodPost,
			path:   "/api/v1/refresh",
			setupMocks: func() {
				mockSvc.On("Refresh", mock.Anything).Return(nil).Once()
			},
			expectedStatus: http.StatusAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMocks()

			var body io.Reader
			if tt.body != "" {
				body = bytes.NewBufferString(tt.body)
			}
			req, err := http.NewRequest(tt.method, testServer.URL+tt.path, body)
			require.NoError(t, err)

			resp, err := testServer.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.parseResponse != nil {
				data, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				parsed, err := tt.parseResponse(data)
				require.NoError(t, err)
				assert.Equal(t, tt.expected, parsed)
			}

			mockSvc.AssertExpectations(t)
		})
	}
}

func TestWebAPI_MetricsEndpoint(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	router := ConfigureRouter(Config{
		Dependencies: Dependencies{
			Dashboard: new(mockService),
			Logger:    logger,
		},
	})
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	resp, err := testServer.Client().Get(testServer.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
