package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProductHandler_List(t *testing.T) {
	testProducts := []model.Product{
		{ID: "P001", Name: "Product 1", Price: 10.00},
		{ID: "P002", Name: "Product 2", Price: 20.00},
	}

	tests := []struct {
		name           string
		query          string
		filter         repository.ProductFilter
		mockReturn     []model.Product
		mockError      error
		expectService  bool
		expectedStatus int
	}{
		{
			name:           "default pagination",
			filter:         repository.ProductFilter{},
			mockReturn:     testProducts,
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "category and pagination",
			query:          "?category=mugs&limit=5&offset=10",
			filter:         repository.ProductFilter{Category: "mugs", Limit: 5, Offset: 10},
			mockReturn:     testProducts[:1],
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid limit",
			query:          "?limit=abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "service error",
			mockError:      errors.New("database error"),
			expectService:  true,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			if tt.expectService {
				mockService.On("List", mock.Anything, tt.filter).Return(tt.mockReturn, tt.mockError)
			}
			h := NewProductHandler(mockService, zerolog.Nop())
			w := httptest.NewRecorder()

			h.List(w, newRequest(http.MethodGet, "/api/products"+tt.query, "", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				products := decodeBody[[]model.Product](t, w)
				assert.Len(t, products, len(tt.mockReturn))
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Get(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		mockReturn     *model.Product
		mockError      error
		expectedStatus int
	}{
		{"found", "P001", &model.Product{ID: "P001", Name: "Mug", Price: 12.5}, nil, http.StatusOK},
		{"not found", "P404", nil, model.ErrProductNotFound, http.StatusNotFound},
		{"service error", "P500", nil, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			mockService.On("GetByID", mock.Anything, tt.id).Return(tt.mockReturn, tt.mockError)
			h := NewProductHandler(mockService, zerolog.Nop())
			req := newRequest(http.MethodGet, "/api/products/"+tt.id, "", nil)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			h.Get(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_CreateUsesCallerAsActor(t *testing.T) {
	mockService := new(MockProductService)
	input := model.ProductInput{Name: "Lamp", Price: 40}
	mockService.On("Create", mock.Anything, input, "user-1").
		Return(&model.Product{ID: "new", Name: "Lamp", Price: 40, CreatedBy: "user-1"}, nil)
	h := NewProductHandler(mockService, zerolog.Nop())
	w := httptest.NewRecorder()

	h.Create(w, newRequest(http.MethodPost, "/api/admin/products", `{"name":"Lamp","price":40}`, testIdentity))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", decodeBody[model.Product](t, w).CreatedBy)
	mockService.AssertExpectations(t)
}

func TestProductHandler_CreateValidation(t *testing.T) {
	mockService := new(MockProductService)
	mockService.On("Create", mock.Anything, mock.Anything, "user-1").
		Return(nil, &model.ValidationError{Fields: map[string]string{"name": "Name is required"}})
	h := NewProductHandler(mockService, zerolog.Nop())
	w := httptest.NewRecorder()

	h.Create(w, newRequest(http.MethodPost, "/api/admin/products", `{"price":1}`, testIdentity))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Name is required", decodeBody[model.ErrorResponse](t, w).Fields["name"])
}

func TestProductHandler_UpdateAndDelete(t *testing.T) {
	mockService := new(MockProductService)
	input := model.ProductInput{Name: "Lamp", Price: 45}
	mockService.On("Update", mock.Anything, "P001", input, "user-1").
		Return(&model.Product{ID: "P001", Name: "Lamp", Price: 45}, nil)
	mockService.On("Delete", mock.Anything, "P002").Return(model.ErrProductNotFound)
	h := NewProductHandler(mockService, zerolog.Nop())

	req := newRequest(http.MethodPut, "/api/admin/products/P001", `{"name":"Lamp","price":45}`, testIdentity)
	req.SetPathValue("id", "P001")
	w := httptest.NewRecorder()
	h.Update(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = newRequest(http.MethodDelete, "/api/admin/products/P002", "", testIdentity)
	req.SetPathValue("id", "P002")
	w = httptest.NewRecorder()
	h.Delete(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	mockService.AssertExpectations(t)
}

func TestProductHandler_InvalidBody(t *testing.T) {
	h := NewProductHandler(new(MockProductService), zerolog.Nop())
	w := httptest.NewRecorder()

	h.Create(w, newRequest(http.MethodPost, "/api/admin/products", `{"name":`, testIdentity))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decodeBody[model.ErrorResponse](t, w).Error)
}
