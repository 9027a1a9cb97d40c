package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"goout/internal/http/middleware"
	"goout/internal/model"
	"goout/internal/service"
)

// ImagesFormField is the multipart field carrying uploaded images.
const ImagesFormField = "images"

// listResponse is the enveloped page every list endpoint answers with. The
// items key is the kind's collection name, so it is built as a map.
func listResponse(collection string, res *service.ListResult) fiber.Map {
	return fiber.Map{
		collection:   res.Items,
		"pagination": res.Pagination,
	}
}

// positiveQuery reads a 1-based integer query parameter; absent means def.
func positiveQuery(c *fiber.Ctx, name string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

type queryError struct {
	code    string
	message string
}

// pageAndLimit reads page (default 1) and limit (0 lets the service choose).
func pageAndLimit(c *fiber.Ctx) (int, int, *queryError) {
	page, ok := positiveQuery(c, "page", 1)
	if !ok {
		return 0, 0, &queryError{"INVALID_PAGE", "page must be a positive integer"}
	}
	limit, ok := positiveQuery(c, "limit", 0)
	if !ok {
		return 0, 0, &queryError{"INVALID_LIMIT", "limit must be a positive integer"}
	}
	return page, limit, nil
}

func queryValues(c *fiber.Ctx) map[string]string {
	out := map[string]string{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		if _, seen := out[key]; !seen {
			out[key] = string(v)
		}
	})
	return out
}

// ListResources godoc
// @Summary List resources of a kind
// @Description Filtered, paginated, newest first. Kind-specific filters come from GET /api/schema/{kind}.
// @Tags resources
// @Produce json
// @Param kind path string true "Kind path (items, guides, hotels, destinations, packages)"
// @Param page query int false "1-based page" default(1)
// @Param limit query int false "Page size" default(12)
// @Param search query string false "Case-insensitive substring"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /api/{kind} [get]
func ListResources(svc service.ResourceService) fiber.Handler {
	kind := svc.Kind()
	return func(c *fiber.Ctx) error {
		page, limit, qerr := pageAndLimit(c)
		if qerr != nil {
			return writeError(c, fiber.StatusBadRequest, qerr.code, qerr.message)
		}

		filters := queryValues(c)
		res, err := svc.List(c.UserContext(), service.ListParams{
			Page:    page,
			Limit:   limit,
			Search:  filters["search"],
			Filters: filters,
		})
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				return writeValidation(c, verr.Fields)
			}
			return err
		}
		return c.JSON(listResponse(kind.Collection, res))
	}
}

// ListByOwner godoc
// @Summary List an owner's resources of a kind
// @Tags resources
// @Produce json
// @Param kind path string true "Kind path"
// @Param userId path string true "Owner ID"
// @Param page query int false "1-based page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /api/{kind}/user/{userId} [get]
func ListByOwner(svc service.ResourceService) fiber.Handler {
	kind := svc.Kind()
	return func(c *fiber.Ctx) error {
		page, limit, qerr := pageAndLimit(c)
		if qerr != nil {
			return writeError(c, fiber.StatusBadRequest, qerr.code, qerr.message)
		}

		res, err := svc.ListByOwner(c.UserContext(), c.Params("userId"), page, limit)
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				return writeValidation(c, verr.Fields)
			}
			return err
		}
		return c.JSON(listResponse(kind.Collection, res))
	}
}

// GetResource godoc
// @Summary Get one resource
// @Tags resources
// @Produce json
// @Param kind path string true "Kind path"
// @Param id path string true "Resource ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorPayload
// @Router /api/{kind}/{id} [get]
func GetResource(svc service.ResourceService) fiber.Handler {
	kind := svc.Kind()
	return func(c *fiber.Ctx) error {
		res, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", kind.Label+" not found")
			}
			return err
		}
		return c.JSON(res)
	}
}

// DeleteResource godoc
// @Summary Delete a resource and its images
// @Tags resources
// @Produce json
// @Param kind path string true "Kind path"
// @Param id path string true "Resource ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errorPayload
// @Router /api/{kind}/{id} [delete]
func DeleteResource(svc service.ResourceService) fiber.Handler {
	kind := svc.Kind()
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", kind.Label+" not found")
			}
			return err
		}
		return c.JSON(fiber.Map{"message": kind.Label + " deleted successfully"})
	}
}

// CreateResource godoc
// @Summary Create a resource
// @Description Multipart form. Array fields are JSON-encoded strings; images go in "images".
// @Tags resources
// @Accept multipart/form-data
// @Produce json
// @Param kind path string true "Kind path"
// @Param userId formData string false "Owner ID; defaults to the token subject"
// @Param images formData file false "Up to the kind's maximum, JPEG/PNG/WebP"
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /api/{kind} [post]
func CreateResource(svc service.ResourceService) fiber.Handler {
	kind := svc.Kind()
	return func(c *fiber.Ctx) error {
		values, files, err := readForm(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "request body is not a valid form")
		}

		owner := strings.TrimSpace(values[service.OwnerField])
		if owner == "" {
			owner = middleware.UserID(c)
		}

		res, err := svc.Create(c.UserContext(), service.CreateInput{
			OwnerID: owner,
			Values:  values,
			Images:  uploads(files),
		})
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				return writeValidation(c, verr.Fields)
			}
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":     kind.Label + " created successfully",
			kind.Singular: summary(kind.SummaryFields, res),
		})
	}
}

// readForm accepts multipart and urlencoded bodies. Only the first value of a
// repeated key is kept.
func readForm(c *fiber.Ctx) (map[string]string, []*multipart.FileHeader, error) {
	values := map[string]string{}
	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, err
		}
		for k, vs := range form.Value {
			if len(vs) > 0 {
				values[k] = vs[0]
			}
		}
		return values, form.File[ImagesFormField], nil
	}

	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		if _, seen := values[key]; !seen {
			values[key] = string(v)
		}
	})
	return values, nil, nil
}

func uploads(files []*multipart.FileHeader) []service.Upload {
	out := make([]service.Upload, 0, len(files))
	for _, fh := range files {
		out = append(out, service.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return out
}

// summary is the create response projection: id, the kind's summary fields,
// imageCount and createdAt.
func summary(fields []string, res *model.Resource) fiber.Map {
	m := fiber.Map{
		"id":         res.ID,
		"imageCount": len(res.Images),
		"createdAt":  res.CreatedAt,
	}
	for _, f := range fields {
		if v, ok := res.Attributes[f]; ok {
			m[f] = v
		}
	}
	return m
}
