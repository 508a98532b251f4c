package create

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/charge-reminder/internal/http/middlewarectx"
	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, collectorUID, collectorName string, req models.DummyEntry) (string, error) {
	args := m.Called(ctx, collectorUID, collectorName, req)
	return args.String(0), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		requestBody    interface{}
		userUID        string
		userName       string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное создание записи",
			requestBody: models.DummyEntry{
				Name:    "Acme Events",
				Email:   "billing@acme.test",
				Charges: 1500,
				Status:  models.StatusPending,
			},
			userUID:  "user-1",
			userName: "collector",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "user-1", "collector", mock.AnythingOfType("models.DummyEntry")).
					Return("entry-1", nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"entry_id":"entry-1"`,
		},
		{
			name: "запись без почты допустима",
			requestBody: models.DummyEntry{
				Name:    "Walk-in Client",
				Charges: 200,
			},
			userUID:  "user-1",
			userName: "collector",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "user-1", "collector", mock.AnythingOfType("models.DummyEntry")).
					Return("entry-2", nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"entry_id":"entry-2"`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			userUID:        "user-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "имя клиента обязательно",
			requestBody: models.DummyEntry{
				Charges: 100,
			},
			userUID:        "user-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Name is a required field`,
		},
		{
			name: "некорректная почта",
			requestBody: models.DummyEntry{
				Name:    "Acme Events",
				Email:   "not-an-email",
				Charges: 100,
			},
			userUID:        "user-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Email must be a valid email`,
		},
		{
			name: "отрицательная сумма",
			requestBody: map[string]any{
				"name":    "Acme Events",
				"charges": -5,
			},
			userUID:        "user-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Charges must not be negative`,
		},
		{
			name: "неизвестный статус",
			requestBody: models.DummyEntry{
				Name:    "Acme Events",
				Charges: 100,
				Status:  "Overdue",
			},
			userUID:        "user-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Status has an unsupported value`,
		},
		{
			name: "отсутствует авторизация",
			requestBody: models.DummyEntry{
				Name:    "Acme Events",
				Charges: 100,
			},
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name: "ошибка сервиса",
			requestBody: models.DummyEntry{
				Name:    "Acme Events",
				Charges: 100,
			},
			userUID: "user-1",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "user-1", "", mock.AnythingOfType("models.DummyEntry")).
					Return("", errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not create entry"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			switch v := tt.requestBody.(type) {
			case string:
				body = []byte(v)
			default:
				body, _ = json.Marshal(v)
			}

			req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewReader(body))
			if tt.userUID != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
				ctx = context.WithValue(ctx, middlewarectx.UserName, tt.userName)
				req = req.WithContext(ctx)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
