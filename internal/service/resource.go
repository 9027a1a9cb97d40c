package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"goout/internal/events"
	"goout/internal/logging"
	"goout/internal/metrics"
	"goout/internal/model"
	"goout/internal/repository"
	"goout/internal/schema"
	"goout/internal/storage"
)

var (
	ErrIDRequired  = errors.New("id is required")
	ErrNotFound    = errors.New("resource not found")
	ErrUnknownKind = schema.ErrUnknownKind
)

// OwnerField is the form and query name of the owning user reference.
const OwnerField = "userId"

// ImagesField keys upload problems in a ValidationError.
const ImagesField = "images"

var allowedImageTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/webp": {".webp"},
}

// ValidationError carries field-keyed input problems. Nothing has been
// written when it is returned.
type ValidationError struct {
	Fields schema.FieldErrors
}

func (e *ValidationError) Error() string {
	return e.Fields.Error()
}

// Upload is one image of a create request. Open is called at most once.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// CreateInput is a create request: raw form values plus images.
type CreateInput struct {
	OwnerID string
	Values  map[string]string
	Images  []Upload
}

// ListParams are the raw listing parameters. Filters holds every other query
// parameter; only those the kind declares are used.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// ListResult is one page plus its pagination summary.
type ListResult struct {
	Items      []model.Resource
	Pagination model.Pagination
}

// ResourceService defines the use cases of one resource kind.
type ResourceService interface {
	// Kind returns the descriptor the service was built for.
	Kind() *schema.Kind

	// Create validates the request, stores the images and persists the resource.
	// Images are removed again if anything after the first write fails.
	Create(ctx context.Context, in CreateInput) (*model.Resource, error)

	// List answers a filtered, paginated query sorted newest first.
	List(ctx context.Context, p ListParams) (*ListResult, error)

	// ListByOwner returns the owner's resources, newest first, always paginated.
	ListByOwner(ctx context.Context, ownerID string, page, limit int) (*ListResult, error)

	// Get returns a single resource by its ID.
	Get(ctx context.Context, id string) (*model.Resource, error)

	// Delete removes the resource, then its images on a best-effort basis.
	Delete(ctx context.Context, id string) error
}

// Options tune a service. Zero values fall back to sensible defaults.
type Options struct {
	MaxUploadBytes int64
	DefaultLimit   int
	OwnerLimit     int
	MaxLimit       int
	Publisher      events.Publisher
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = 5 << 20
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = 12
	}
	if o.OwnerLimit <= 0 {
		o.OwnerLimit = 10
	}
	if o.MaxLimit <= 0 {
		o.MaxLimit = 100
	}
	if o.Publisher == nil {
		o.Publisher = events.Noop()
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// resourceService is the schema-driven implementation shared by every kind.
type resourceService struct {
	kind   *schema.Kind
	store  storage.Storage
	repo   repository.ResourceRepository
	opts   Options
	log    *slog.Logger
	tracer trace.Tracer
}

// NewResourceService constructs the service for one kind.
func NewResourceService(kind *schema.Kind, store storage.Storage, repo repository.ResourceRepository, opts Options) ResourceService {
	opts = opts.withDefaults()
	return &resourceService{
		kind:   kind,
		store:  store,
		repo:   repo,
		opts:   opts,
		log:    opts.Logger.With("component", "service", "kind", kind.Name),
		tracer: otel.Tracer("goout/internal/service"),
	}
}

// NewResourceServices builds one service per kind of reg, in document order.
func NewResourceServices(reg *schema.Registry, store storage.Storage, repo repository.ResourceRepository, opts Options) []ResourceService {
	out := make([]ResourceService, 0, len(reg.Kinds))
	for _, k := range reg.Kinds {
		out = append(out, NewResourceService(k, store, repo, opts))
	}
	return out
}

func (s *resourceService) Kind() *schema.Kind { return s.kind }

func (s *resourceService) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "ResourceService."+op, trace.WithAttributes(attribute.String("resource.kind", s.kind.Name)))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *resourceService) Create(ctx context.Context, in CreateInput) (*model.Resource, error) {
	ctx, span := s.start(ctx, "Create")
	defer span.End()

	attrs, errs := s.kind.Parse(in.Values)
	if errs == nil {
		errs = schema.FieldErrors{}
	}
	owner := strings.TrimSpace(in.OwnerID)
	if owner == "" {
		errs.Add(OwnerField, "User ID is required")
	}
	s.checkUploads(in.Images, errs)
	if len(errs) > 0 {
		s.opts.Metrics.ValidationFailed(s.kind.Name)
		return nil, &ValidationError{Fields: errs}
	}

	keys := make([]string, 0, len(in.Images))
	for _, up := range in.Images {
		key, err := s.put(ctx, up)
		if err != nil {
			s.removeKeys(ctx, keys, "create")
			return nil, fail(span, fmt.Errorf("upload to storage: %w", err))
		}
		keys = append(keys, key)
	}

	paths := make([]string, len(keys))
	for i, k := range keys {
		paths[i] = storage.PathFromKey(k)
	}

	stored, err := s.repo.Create(ctx, &model.Resource{
		Kind:       s.kind.Name,
		OwnerID:    owner,
		Attributes: attrs,
		Images:     paths,
	})
	if err != nil {
		if delErr := s.removeKeys(ctx, keys, "create"); delErr != nil {
			return nil, fail(span, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr))
		}
		return nil, fail(span, fmt.Errorf("db save failed: %w", err))
	}

	span.SetAttributes(attribute.String("resource.id", stored.ID), attribute.Int("resource.images", len(paths)))
	s.opts.Metrics.ResourceCreated(s.kind.Name, len(paths))
	s.publish(ctx, events.Created, stored)
	return stored, nil
}

func (s *resourceService) checkUploads(ups []Upload, errs schema.FieldErrors) {
	if len(ups) > s.kind.MaxImages {
		errs.Add(ImagesField, fmt.Sprintf("Cannot upload more than %d images", s.kind.MaxImages))
		return
	}
	for _, up := range ups {
		if !allowedImage(up.ContentType, up.Filename) {
			errs.Add(ImagesField, "Only JPEG, PNG and WebP images are allowed")
			return
		}
		if up.Size <= 0 {
			errs.Add(ImagesField, fmt.Sprintf("Image %q is empty", up.Filename))
			return
		}
		if up.Size > s.opts.MaxUploadBytes {
			errs.Add(ImagesField, fmt.Sprintf("Each image must be at most %d MB", s.opts.MaxUploadBytes>>20))
			return
		}
	}
}

func allowedImage(contentType, filename string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	exts, ok := allowedImageTypes[strings.ToLower(mt)]
	if !ok {
		return false
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

func (s *resourceService) put(ctx context.Context, up Upload) (string, error) {
	if up.Open == nil {
		return "", errors.New("upload has no content")
	}
	rc, err := up.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	key := storage.NewKey(s.kind.MediaDir, up.Filename)
	info, err := s.store.Put(ctx, key, rc, storage.PutObjectOptions{
		Size:        up.Size,
		ContentType: up.ContentType,
		Metadata:    map[string]string{"original-filename": up.Filename},
	})
	if err != nil {
		return "", err
	}
	if info.Key == "" {
		return key, nil
	}
	return info.Key, nil
}

// removeKeys deletes every key and returns the first error.
func (s *resourceService) removeKeys(ctx context.Context, keys []string, op string) error {
	var first error
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil {
			s.log.Warn("media_cleanup_failed", "operation", op, "key", k, "error", err.Error())
			s.opts.Metrics.MediaCleanupFailed(s.kind.Name, op)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (s *resourceService) List(ctx context.Context, p ListParams) (*ListResult, error) {
	ctx, span := s.start(ctx, "List")
	defer span.End()

	lq, page, errs := s.buildQuery(p)
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return s.fetch(ctx, span, lq, page)
}

func (s *resourceService) ListByOwner(ctx context.Context, ownerID string, page, limit int) (*ListResult, error) {
	ctx, span := s.start(ctx, "ListByOwner")
	defer span.End()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, &ValidationError{Fields: schema.FieldErrors{OwnerField: "User ID is required"}}
	}
	page, limit = s.window(page, limit, s.opts.OwnerLimit)
	lq := repository.ListQuery{
		Kind:    s.kind.Name,
		OwnerID: ownerID,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}
	return s.fetch(ctx, span, lq, page)
}

func (s *resourceService) fetch(ctx context.Context, span trace.Span, lq repository.ListQuery, page int) (*ListResult, error) {
	res, err := s.repo.List(ctx, lq)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("list.total", res.Total))
	items := res.Items
	if items == nil {
		items = []model.Resource{}
	}
	return &ListResult{
		Items:      items,
		Pagination: model.NewPagination(res.Total, page, lq.Limit),
	}, nil
}

func (s *resourceService) window(page, limit, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = def
	}
	if limit > s.opts.MaxLimit {
		limit = s.opts.MaxLimit
	}
	return page, limit
}

func (s *resourceService) buildQuery(p ListParams) (repository.ListQuery, int, schema.FieldErrors) {
	page, limit := s.window(p.Page, p.Limit, s.opts.DefaultLimit)
	lq := repository.ListQuery{
		Kind:         s.kind.Name,
		Search:       strings.TrimSpace(p.Search),
		SearchFields: s.kind.SearchFields,
		Limit:        limit,
		Offset:       (page - 1) * limit,
	}
	errs := schema.FieldErrors{}

	for _, f := range s.kind.Filters {
		switch f.Mode {
		case schema.FilterEquals:
			if v := strings.TrimSpace(p.Filters[f.Param]); v != "" {
				lq.Equals = append(lq.Equals, repository.Match{Field: f.Field, Value: v})
			}
		case schema.FilterContains:
			if v := strings.TrimSpace(p.Filters[f.Param]); v != "" {
				lq.Contains = append(lq.Contains, repository.Match{Field: f.Field, Value: v})
			}
		case schema.FilterRange:
			lo, ok := parseBound(p.Filters[f.MinParam])
			if !ok {
				errs.Add(f.MinParam, f.MinParam+" must be a number")
			}
			hi, ok := parseBound(p.Filters[f.MaxParam])
			if !ok {
				errs.Add(f.MaxParam, f.MaxParam+" must be a number")
			}
			if lo != nil || hi != nil {
				lq.Ranges = append(lq.Ranges, repository.Range{Field: f.Field, Min: lo, Max: hi})
			}
		}
	}
	return lq, page, errs
}

// parseBound treats an empty value as "no bound".
func parseBound(raw string) (*float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return &v, true
}

func (s *resourceService) Get(ctx context.Context, id string) (*model.Resource, error) {
	ctx, span := s.start(ctx, "Get")
	defer span.End()

	if id == "" {
		return nil, ErrIDRequired
	}
	res, err := s.repo.FindByID(ctx, s.kind.Name, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fail(span, err)
	}
	return res, nil
}

func (s *resourceService) Delete(ctx context.Context, id string) error {
	ctx, span := s.start(ctx, "Delete")
	defer span.End()

	if id == "" {
		return ErrIDRequired
	}
	removed, err := s.repo.Delete(ctx, s.kind.Name, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fail(span, err)
	}

	keys := make([]string, 0, len(removed.Images))
	for _, p := range removed.Images {
		key, ok := storage.KeyFromPath(p)
		if !ok {
			s.log.Warn("media_cleanup_failed", "operation", "delete", "path", p, "error", "path outside media store")
			s.opts.Metrics.MediaCleanupFailed(s.kind.Name, "delete")
			continue
		}
		keys = append(keys, key)
	}
	_ = s.removeKeys(ctx, keys, "delete")

	s.opts.Metrics.ResourceDeleted(s.kind.Name)
	s.publish(ctx, events.Deleted, removed)
	return nil
}

func (s *resourceService) publish(ctx context.Context, t events.Type, res *model.Resource) {
	ev := events.Event{
		Type:       t,
		Kind:       s.kind.Name,
		ID:         res.ID,
		OwnerID:    res.OwnerID,
		ImageCount: len(res.Images),
		At:         time.Now().UTC(),
	}
	if err := s.opts.Publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("event_publish_failed", "event", string(t), "id", res.ID, "error", err.Error())
	}
}
