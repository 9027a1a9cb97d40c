package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"goout/internal/model"
	"goout/internal/repository"
)

const resourceColumns = "id, kind, owner_id, attributes, images, created_at, updated_at"

var attrName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ResourcePostgres is a PostgreSQL implementation of repository.ResourceRepository.
// Every kind shares the resources table; attributes are stored as JSONB.
type ResourcePostgres struct {
	db *sqlx.DB
}

// NewResourcePostgres creates a new ResourcePostgres repository.
func NewResourcePostgres(db *sqlx.DB) *ResourcePostgres {
	return &ResourcePostgres{db: db}
}

var _ repository.ResourceRepository = (*ResourcePostgres)(nil)

type resourceRow struct {
	ID         string    `db:"id"`
	Kind       string    `db:"kind"`
	OwnerID    string    `db:"owner_id"`
	Attributes []byte    `db:"attributes"`
	Images     []byte    `db:"images"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r resourceRow) toModel() (*model.Resource, error) {
	out := &model.Resource{
		ID:        r.ID,
		Kind:      r.Kind,
		OwnerID:   r.OwnerID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if len(r.Attributes) > 0 {
		if err := json.Unmarshal(r.Attributes, &out.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
	}
	if len(r.Images) > 0 {
		if err := json.Unmarshal(r.Images, &out.Images); err != nil {
			return nil, fmt.Errorf("decode images: %w", err)
		}
	}
	if out.Attributes == nil {
		out.Attributes = map[string]any{}
	}
	if out.Images == nil {
		out.Images = []string{}
	}
	return out, nil
}

// Create inserts a new resource row and returns the stored record.
func (r *ResourcePostgres) Create(ctx context.Context, res *model.Resource) (*model.Resource, error) {
	attrs, err := json.Marshal(nonNilMap(res.Attributes))
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	images, err := json.Marshal(nonNilSlice(res.Images))
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}

	q := `
		INSERT INTO resources (kind, owner_id, attributes, images)
		VALUES ($1, $2, $3::jsonb, $4::jsonb)
		RETURNING ` + resourceColumns
	var row resourceRow
	if err := r.db.QueryRowxContext(ctx, q, res.Kind, res.OwnerID, string(attrs), string(images)).StructScan(&row); err != nil {
		return nil, err
	}
	return row.toModel()
}

// FindByID fetches a single resource of the given kind.
func (r *ResourcePostgres) FindByID(ctx context.Context, kind, id string) (*model.Resource, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	q := `SELECT ` + resourceColumns + ` FROM resources WHERE kind = $1 AND id = $2`
	var row resourceRow
	if err := r.db.GetContext(ctx, &row, q, kind, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return row.toModel()
}

// List returns resources using LIMIT/OFFSET pagination and a total count.
func (r *ResourcePostgres) List(ctx context.Context, lq repository.ListQuery) (*repository.PageResult[model.Resource], error) {
	where, args, err := buildWhere(lq)
	if err != nil {
		return nil, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM resources WHERE `+where, args...); err != nil {
		return nil, err
	}

	n := len(args)
	q := fmt.Sprintf(`SELECT %s FROM resources WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		resourceColumns, where, n+1, n+2)
	var rows []resourceRow
	if err := r.db.SelectContext(ctx, &rows, q, append(args, lq.Limit, lq.Offset)...); err != nil {
		return nil, err
	}

	items := make([]model.Resource, 0, len(rows))
	for _, row := range rows {
		m, err := row.toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	return &repository.PageResult[model.Resource]{Items: items, Total: total}, nil
}

// Delete removes a resource and returns the deleted row.
func (r *ResourcePostgres) Delete(ctx context.Context, kind, id string) (*model.Resource, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	q := `DELETE FROM resources WHERE kind = $1 AND id = $2 RETURNING ` + resourceColumns
	var row resourceRow
	if err := r.db.QueryRowxContext(ctx, q, kind, id).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return row.toModel()
}

// Ping checks database connectivity.
func (r *ResourcePostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// buildWhere renders the filter clauses with positional arguments. Attribute
// names are inlined as JSON keys, so they must be plain identifiers.
func buildWhere(lq repository.ListQuery) (string, []any, error) {
	clauses := []string{"kind = $1"}
	args := []any{lq.Kind}
	idx := 2

	if lq.OwnerID != "" {
		clauses = append(clauses, fmt.Sprintf("owner_id = $%d", idx))
		args = append(args, lq.OwnerID)
		idx++
	}

	if s := strings.TrimSpace(lq.Search); s != "" && len(lq.SearchFields) > 0 {
		ors := make([]string, 0, len(lq.SearchFields))
		for _, f := range lq.SearchFields {
			if !attrName.MatchString(f) {
				return "", nil, fmt.Errorf("invalid search field %q", f)
			}
			ors = append(ors, fmt.Sprintf("attributes->>'%s' ILIKE $%d", f, idx))
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
		args = append(args, "%"+escapeLike(s)+"%")
		idx++
	}

	for _, m := range lq.Equals {
		if !attrName.MatchString(m.Field) {
			return "", nil, fmt.Errorf("invalid filter field %q", m.Field)
		}
		clauses = append(clauses, fmt.Sprintf("attributes->>'%s' = $%d", m.Field, idx))
		args = append(args, m.Value)
		idx++
	}

	for _, m := range lq.Contains {
		if !attrName.MatchString(m.Field) {
			return "", nil, fmt.Errorf("invalid filter field %q", m.Field)
		}
		clauses = append(clauses, fmt.Sprintf("attributes->'%s' @> jsonb_build_array($%d::text)", m.Field, idx))
		args = append(args, m.Value)
		idx++
	}

	for _, rg := range lq.Ranges {
		if !attrName.MatchString(rg.Field) {
			return "", nil, fmt.Errorf("invalid range field %q", rg.Field)
		}
		if rg.Min != nil {
			clauses = append(clauses, fmt.Sprintf("(attributes->>'%s')::numeric >= $%d", rg.Field, idx))
			args = append(args, *rg.Min)
			idx++
		}
		if rg.Max != nil {
			clauses = append(clauses, fmt.Sprintf("(attributes->>'%s')::numeric <= $%d", rg.Field, idx))
			args = append(args, *rg.Max)
			idx++
		}
	}

	return strings.Join(clauses, " AND "), args, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func nonNilSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
