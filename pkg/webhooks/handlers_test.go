// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ory/hydra/v2/oauth2"
	"go.uber.org/mock/gomock"

	httptypes "github.com/canonical/erp-access-service/internal/http/types"
)

func newTestMux(t *testing.T, middlewares ...func(http.Handler) http.Handler) (*chi.Mux, *MockServiceInterface) {
	ctrl := gomock.NewController(t)

	mockService := NewMockServiceInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)
	mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()

	mux := chi.NewMux()
	NewAPI(mockService, mockLogger).RegisterEndpoints(mux, middlewares...)

	return mux, mockService
}

func TestAPI_Registration(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
	}{
		{
			name: "pending profiles linked",
			body: `{"id":"identity-123","email":"agent@acme.test"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().HandleRegistration(gomock.Any(), "identity-123", "agent@acme.test").Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "malformed body",
			body:           `{"id":`,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "linking fails",
			body: `{"id":"identity-456","email":"agent@acme.test"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().HandleRegistration(gomock.Any(), "identity-456", "agent@acme.test").Return(errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, mockService := newTestMux(t)
			tt.setupMocks(mockService)

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhooks/registration", bytes.NewBufferString(tt.body)))

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var resp httptypes.Response
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode envelope: %v", err)
			}
			if resp.Status != tt.expectedStatus {
				t.Errorf("expected envelope status %d, got %d", tt.expectedStatus, resp.Status)
			}
		})
	}
}

func TestAPI_TokenHook(t *testing.T) {
	claims := &TokenHookResponse{}
	claims.Session.IDToken = map[string]interface{}{RolesClaim: []string{"agent", "hr_manager"}}
	claims.Session.AccessToken = map[string]interface{}{RolesClaim: []string{"agent", "hr_manager"}}

	tests := []struct {
		name           string
		body           func() []byte
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
		expectedRoles  []string
	}{
		{
			name: "claims injected",
			body: func() []byte {
				b, _ := json.Marshal(&oauth2.TokenHookRequest{Session: oauth2.NewSession("identity-123")})
				return b
			},
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().HandleTokenHook(gomock.Any(), gomock.Any()).Return(claims, nil)
			},
			expectedStatus: http.StatusOK,
			expectedRoles:  []string{"agent", "hr_manager"},
		},
		{
			name:           "malformed body",
			body:           func() []byte { return []byte("not json") },
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "resolution fails",
			body: func() []byte {
				b, _ := json.Marshal(&oauth2.TokenHookRequest{Session: oauth2.NewSession("identity-123")})
				return b
			},
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().HandleTokenHook(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, mockService := newTestMux(t)
			tt.setupMocks(mockService)

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhooks/token", bytes.NewBuffer(tt.body())))

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedRoles == nil {
				return
			}

			// Hydra reads the bare session document
			var resp struct {
				Session struct {
					IDToken     map[string][]string `json:"id_token"`
					AccessToken map[string][]string `json:"access_token"`
				} `json:"session"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode session: %v", err)
			}
			if !slices.Equal(resp.Session.IDToken[RolesClaim], tt.expectedRoles) {
				t.Errorf("expected ID token roles %v, got %v", tt.expectedRoles, resp.Session.IDToken[RolesClaim])
			}
			if !slices.Equal(resp.Session.AccessToken[RolesClaim], tt.expectedRoles) {
				t.Errorf("expected access token roles %v, got %v", tt.expectedRoles, resp.Session.AccessToken[RolesClaim])
			}
		})
	}
}

func TestAPI_RegistrationMiddlewares(t *testing.T) {
	wrapped := 0
	counter := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped++
			next.ServeHTTP(w, r)
		})
	}

	mux, mockService := newTestMux(t, counter)
	mockService.EXPECT().HandleRegistration(gomock.Any(), "identity-123", "agent@acme.test").Return(nil)
	mockService.EXPECT().HandleTokenHook(gomock.Any(), gomock.Any()).Return(&TokenHookResponse{}, nil)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/webhooks/registration", bytes.NewBufferString(`{"id":"identity-123","email":"agent@acme.test"}`)))

	body, _ := json.Marshal(&oauth2.TokenHookRequest{Session: oauth2.NewSession("identity-123")})
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/webhooks/token", bytes.NewBuffer(body)))

	if wrapped != 1 {
		t.Errorf("expected the middleware to wrap only the registration hook, ran %d times", wrapped)
	}
}
