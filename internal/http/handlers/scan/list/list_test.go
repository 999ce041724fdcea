package list

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vigilhub/scantrack/internal/http/middlewarectx"
	"github.com/vigilhub/scantrack/internal/models"
)

// Мок сервиса с методом List
type ScanServiceMock struct {
	mock.Mock
}

func (m *ScanServiceMock) List(ctx context.Context, ownerUID string, limit, offset int) ([]*models.Scan, error) {
	args := m.Called(ctx, ownerUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Scan), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestListHandler_ServeHTTP(t *testing.T) {
	now := time.Now().UTC()
	scans := []*models.Scan{
		{ID: "scan-2", OwnerUID: "owner-1", TargetType: "ip", TargetValue: "10.0.0.2", Status: "pending", CreatedAt: now},
		{ID: "scan-1", OwnerUID: "owner-1", TargetType: "domain", TargetValue: "example.org", Status: "pending", CreatedAt: now.Add(-time.Minute)},
	}

	tests := []struct {
		name           string
		url            string
		withOwner      bool
		mockScans      []*models.Scan
		mockErr        error
		mockCalled     bool
		wantLimit      int
		wantOffset     int
		wantStatusCode int
		wantCount      int
		wantError      string
	}{
		{
			name:           "list without pagination params",
			url:            "/api/scans",
			withOwner:      true,
			mockScans:      scans,
			mockCalled:     true,
			wantLimit:      0,
			wantOffset:     0,
			wantStatusCode: http.StatusOK,
			wantCount:      2,
		},
		{
			name:           "list with pagination",
			url:            "/api/scans?limit=1&offset=1",
			withOwner:      true,
			mockScans:      scans[1:],
			mockCalled:     true,
			wantLimit:      1,
			wantOffset:     1,
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name:           "empty list stays an array",
			url:            "/api/scans",
			withOwner:      true,
			mockScans:      []*models.Scan{},
			mockCalled:     true,
			wantStatusCode: http.StatusOK,
			wantCount:      0,
		},
		{
			name:           "missing owner in context",
			url:            "/api/scans",
			withOwner:      false,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:           "storage error",
			url:            "/api/scans",
			withOwner:      true,
			mockErr:        errors.New("connection refused"),
			mockCalled:     true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not list scans",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanMock := new(ScanServiceMock)
			if tt.mockCalled {
				scanMock.On("List", mock.Anything, "owner-1", tt.wantLimit, tt.wantOffset).
					Return(tt.mockScans, tt.mockErr).Once()
			}
			handler := New(newNoopLogger(), scanMock)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.withOwner {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, "owner-1")
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantError != "" {
				assert.Equal(t, "Error", resp["status"])
				assert.Equal(t, tt.wantError, resp["error"])
			} else {
				data, ok := resp["data"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, float64(tt.wantCount), data["list_count"])
				list, ok := data["scans"].([]any)
				require.True(t, ok)
				assert.Len(t, list, tt.wantCount)
			}
			scanMock.AssertExpectations(t)
		})
	}
}
