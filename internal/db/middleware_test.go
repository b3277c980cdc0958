// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"
)

func runTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func TestTransactionMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		status         int
		setupMocks     func(*MockDBClientInterface, *MockLoggerInterface)
		expectedStatus int
	}{
		{
			name:           "reads skip the transaction",
			method:         http.MethodGet,
			status:         http.StatusOK,
			setupMocks:     func(*MockDBClientInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "successful write commits",
			method: http.MethodPost,
			status: http.StatusOK,
			setupMocks: func(db *MockDBClientInterface, _ *MockLoggerInterface) {
				db.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(runTx)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "failed write rolls back",
			method: http.MethodPost,
			status: http.StatusInternalServerError,
			setupMocks: func(db *MockDBClientInterface, logger *MockLoggerInterface) {
				db.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(runTx)
				logger.EXPECT().Debugf(gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockDB := NewMockDBClientInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			tt.setupMocks(mockDB, mockLogger)

			handler := TransactionMiddleware(mockDB, mockLogger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, "/webhooks/registration", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}
