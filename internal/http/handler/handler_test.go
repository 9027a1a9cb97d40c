package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"goout/internal/http/middleware"
	"goout/internal/model"
	repoMocks "goout/internal/repository/mocks"
	"goout/internal/schema"
	"goout/internal/service"
	serviceMocks "goout/internal/service/mocks"
	"goout/internal/storage"
	storeMocks "goout/internal/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func itemKind(t *testing.T) *schema.Kind {
	t.Helper()
	k, err := schema.MustDefault().Lookup("item")
	require.NoError(t, err)
	return k
}

func decode(t *testing.T, r io.Reader, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(r).Decode(v))
}

func TestHealthCheck(t *testing.T) {
	repo := new(repoMocks.MockResourceRepository)

	app := fiber.New()
	app.Get("/health", HealthCheck(repo))

	t.Run("healthy", func(t *testing.T) {
		repo.On("Ping", mock.Anything).Return(nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		decode(t, resp.Body, &body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		repo.On("Ping", mock.Anything).Return(errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		decode(t, resp.Body, &body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListResources(t *testing.T) {
	mockSvc := serviceMocks.NewMockResourceService(itemKind(t))
	app := fiber.New()
	app.Get("/api/items", ListResources(mockSvc))

	t.Run("filters are forwarded", func(t *testing.T) {
		expected := &service.ListResult{
			Items:      []model.Resource{{ID: uuid.NewString(), Kind: "item", Attributes: map[string]any{"title": "Van"}}},
			Pagination: model.NewPagination(13, 2, 12),
		}
		mockSvc.On("List", mock.Anything, mock.MatchedBy(func(p service.ListParams) bool {
			return p.Page == 2 && p.Limit == 12 &&
				p.Filters["category"] == "Vehicles" &&
				p.Filters["minPrice"] == "1000" &&
				p.Filters["maxPrice"] == "5000"
		})).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/items?category=Vehicles&minPrice=1000&maxPrice=5000&page=2&limit=12", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Items      []map[string]any `json:"items"`
			Pagination model.Pagination `json:"pagination"`
		}
		decode(t, resp.Body, &result)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Van", result.Items[0]["title"])
		assert.Equal(t, model.Pagination{TotalMatching: 13, TotalPages: 2, CurrentPage: 2, ItemsPerPage: 12}, result.Pagination)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty page is an empty array", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, mock.Anything).Return(&service.ListResult{
			Items:      []model.Resource{},
			Pagination: model.NewPagination(0, 1, 12),
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), `"items":[]`)
	})

	t.Run("invalid page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/items?page=0", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		decode(t, resp.Body, &body)
		assert.Equal(t, "INVALID_PAGE", body.Error.Code)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/items?limit=abc", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		decode(t, resp.Body, &body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})

	t.Run("non numeric bound", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, mock.Anything).Return(nil, &service.ValidationError{
			Fields: schema.FieldErrors{"minPrice": "minPrice must be a number"},
		}).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/items?minPrice=cheap", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		decode(t, resp.Body, &body)
		assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		assert.Equal(t, "minPrice must be a number", body.Error.Fields["minPrice"])
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListByOwner(t *testing.T) {
	mockSvc := serviceMocks.NewMockResourceService(itemKind(t))
	app := fiber.New()
	app.Get("/api/items/user/:userId", ListByOwner(mockSvc))

	mockSvc.On("ListByOwner", mock.Anything, "u-1", 1, 0).Return(&service.ListResult{
		Items:      []model.Resource{{ID: "a"}, {ID: "b"}},
		Pagination: model.NewPagination(2, 1, 10),
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/items/user/u-1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		Items      []map[string]any `json:"items"`
		Pagination model.Pagination `json:"pagination"`
	}
	decode(t, resp.Body, &result)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, 10, result.Pagination.ItemsPerPage)
	mockSvc.AssertExpectations(t)
}

func imagePart(t *testing.T, w *multipart.Writer, name, contentType, body string) {
	t.Helper()
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="images"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
}

func TestCreateResource(t *testing.T) {
	mockSvc := serviceMocks.NewMockResourceService(itemKind(t))
	app := fiber.New(fiber.Config{DisablePreParseMultipartForm: true})
	app.Post("/api/items", CreateResource(mockSvc))

	t.Run("success", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		require.NoError(t, writer.WriteField("title", "Tent"))
		require.NoError(t, writer.WriteField("category", "Camping Gear"))
		require.NoError(t, writer.WriteField("price", "1500"))
		require.NoError(t, writer.WriteField("rentalType", "rent"))
		require.NoError(t, writer.WriteField("userId", "u-1"))
		imagePart(t, writer, "a.jpg", "image/jpeg", "jpeg-bytes")
		imagePart(t, writer, "b.png", "image/png", "png")
		require.NoError(t, writer.Close())

		created := &model.Resource{
			ID:      uuid.NewString(),
			Kind:    "item",
			OwnerID: "u-1",
			Attributes: map[string]any{
				"title": "Tent", "category": "Camping Gear", "price": 1500.0, "rentalType": "rent", "location": "Ella",
			},
			Images:    []string{"uploads/items/1.jpg", "uploads/items/2.png"},
			CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		}
		mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateInput) bool {
			if in.OwnerID != "u-1" || in.Values["price"] != "1500" || len(in.Images) != 2 {
				return false
			}
			rc, err := in.Images[0].Open()
			if err != nil {
				return false
			}
			defer rc.Close()
			b, _ := io.ReadAll(rc)
			return string(b) == "jpeg-bytes" &&
				in.Images[0].ContentType == "image/jpeg" &&
				in.Images[0].Size == int64(len("jpeg-bytes")) &&
				in.Images[1].Filename == "b.png"
		})).Return(created, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/items", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result struct {
			Message string         `json:"message"`
			Item    map[string]any `json:"item"`
		}
		decode(t, resp.Body, &result)
		assert.Equal(t, "Item created successfully", result.Message)
		assert.Equal(t, created.ID, result.Item["id"])
		assert.Equal(t, 1500.0, result.Item["price"])
		assert.Equal(t, 2.0, result.Item["imageCount"])
		assert.Equal(t, "Tent", result.Item["title"])
		assert.NotContains(t, result.Item, "location")
		mockSvc.AssertExpectations(t)
	})

	t.Run("owner falls back to token subject", func(t *testing.T) {
		app := fiber.New(fiber.Config{DisablePreParseMultipartForm: true})
		app.Post("/api/items", func(c *fiber.Ctx) error {
			c.Locals(middleware.UserIDLocalKey, "sub-7")
			return c.Next()
		}, CreateResource(mockSvc))

		mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateInput) bool {
			return in.OwnerID == "sub-7"
		})).Return(&model.Resource{ID: "x"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader("title=Tent"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, &service.ValidationError{
			Fields: schema.FieldErrors{"title": "Title is required", "userId": "User ID is required"},
		}).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		decode(t, resp.Body, &res)
		assert.Equal(t, "VALIDATION_FAILED", res.Error.Code)
		assert.Len(t, res.Error.Fields, 2)
	})

	t.Run("broken multipart body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader("not multipart"))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		decode(t, resp.Body, &res)
		assert.Equal(t, "INVALID_FORM", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db save failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader("title=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetResource(t *testing.T) {
	mockSvc := serviceMocks.NewMockResourceService(itemKind(t))
	app := fiber.New()
	app.Get("/api/items/:id", GetResource(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Resource{
			ID:         id,
			Attributes: map[string]any{"title": "Tent"},
			Images:     []string{"uploads/items/1.jpg"},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/items/"+id, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result map[string]any
		decode(t, resp.Body, &result)
		assert.Equal(t, id, result["id"])
		assert.Equal(t, "Tent", result["title"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "missing").Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/items/missing", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		decode(t, resp.Body, &res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		assert.Equal(t, "Item not found", res.Error.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "boom").Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/items/boom", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteResource(t *testing.T) {
	mockSvc := serviceMocks.NewMockResourceService(itemKind(t))
	app := fiber.New()
	app.Delete("/api/items/:id", DeleteResource(mockSvc))

	t.Run("success then not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrNotFound).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/items/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var ok map[string]string
		decode(t, resp.Body, &ok)
		assert.Equal(t, "Item deleted successfully", ok["message"])

		resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/api/items/"+id, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		decode(t, resp.Body, &res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "x").Return(errors.New("delete error")).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/items/x", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestSchemaEndpoints(t *testing.T) {
	reg := schema.MustDefault()
	app := fiber.New()
	app.Get("/api/schema", SchemaIndex(reg))
	app.Get("/api/schema/:kind", SchemaKind(reg))

	t.Run("index", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/schema", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Enums map[string][]string `json:"enums"`
			Kinds []schema.Kind       `json:"kinds"`
		}
		decode(t, resp.Body, &body)
		assert.Len(t, body.Kinds, len(reg.Kinds))
		assert.Contains(t, body.Enums["itemCategories"], "Camping Gear")
	})

	t.Run("by path", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/schema/hotels", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var k schema.Kind
		decode(t, resp.Body, &k)
		assert.Equal(t, "hotel", k.Name)
		assert.Equal(t, 10, k.MaxImages)
	})

	t.Run("unknown", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/schema/boats", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var res errorPayload
		decode(t, resp.Body, &res)
		assert.Equal(t, "UNKNOWN_KIND", res.Error.Code)
	})
}

func TestServeMedia(t *testing.T) {
	store := new(storeMocks.MockStorage)
	app := fiber.New()
	app.Get("/uploads/*", ServeMedia(store))

	t.Run("found", func(t *testing.T) {
		store.On("Get", mock.Anything, "items/1.png").
			Return(io.NopCloser(strings.NewReader("png")), storage.ObjectInfo{Key: "items/1.png", Size: 3, ContentType: "image/png"}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/uploads/items/1.png", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "png", string(b))
	})

	t.Run("missing", func(t *testing.T) {
		store.On("Get", mock.Anything, "items/none.png").
			Return(nil, storage.ObjectInfo{}, storage.ErrObjectNotFound).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/uploads/items/none.png", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	store.AssertExpectations(t)
}

func TestErrorHandler_Details(t *testing.T) {
	for _, expose := range []bool{false, true} {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(ErrorConfig{ExposeDetails: expose})})
		app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("disk on fire") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var res errorPayload
		decode(t, resp.Body, &res)
		assert.Equal(t, "INTERNAL_ERROR", res.Error.Code)
		if expose {
			assert.Equal(t, "disk on fire", res.Error.Details)
		} else {
			assert.Empty(t, res.Error.Details)
		}
	}
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	reg := schema.MustDefault()
	var svcs []service.ResourceService
	for _, k := range reg.Kinds {
		svcs = append(svcs, serviceMocks.NewMockResourceService(k))
	}
	denied := func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusUnauthorized, "invalid token") }
	RegisterRoutes(app, Deps{Services: svcs, Registry: reg, Auth: denied})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		decode(t, resp.Body, &res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		decode(t, resp.Body, &res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})

	t.Run("mutating routes are guarded", func(t *testing.T) {
		for _, k := range reg.Kinds {
			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/"+k.Path, nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, k.Path)

			resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/api/"+k.Path+"/abc", nil))
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, k.Path)

			var res errorPayload
			decode(t, resp.Body, &res)
			assert.Equal(t, "UNAUTHORIZED", res.Error.Code)
			assert.Equal(t, "invalid token", res.Error.Message)
		}
	})

	t.Run("every kind has its owner route", func(t *testing.T) {
		for i, k := range reg.Kinds {
			svcs[i].(*serviceMocks.MockResourceService).
				On("ListByOwner", mock.Anything, "u", 1, 0).
				Return(&service.ListResult{Items: []model.Resource{}}, nil).Once()

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/"+k.Path+"/user/u", nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode, k.Path)

			var body map[string]json.RawMessage
			decode(t, resp.Body, &body)
			assert.Contains(t, body, k.Collection)
			assert.Contains(t, body, "pagination")
		}
	})
}
