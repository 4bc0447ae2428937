package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
)

// Schema creates the projects table. Column names follow the hosted
// database the pages were first served from, so existing rows load as is.
const Schema = `
CREATE TABLE IF NOT EXISTS projects (
	id                 TEXT PRIMARY KEY,
	owner_email        TEXT NOT NULL,
	template_type      TEXT NOT NULL,
	template_code_hash TEXT NOT NULL,
	slug               TEXT NOT NULL,
	is_published       BOOLEAN NOT NULL DEFAULT FALSE,
	data               JSONB,
	editable_until     TIMESTAMPTZ,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (template_type, slug)
);
CREATE INDEX IF NOT EXISTS projects_owner_idx ON projects (owner_email, template_type);
`

const projectColumns = `id, owner_email, template_type, template_code_hash, slug, is_published, data, editable_until, created_at, updated_at`

// PostgresRepo is a Repository over a pgx connection pool.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{pool: pool}
}

// Migrate applies Schema.
func (r *PostgresRepo) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("%w: migrate projects: %v", apperr.ErrPersistence, err)
	}
	return nil
}

func scanProject(row pgx.Row) (*Project, error) {
	var (
		p    Project
		data []byte
	)
	err := row.Scan(&p.ID, &p.OwnerEmail, &p.TemplateType, &p.TemplateCodeHash, &p.Slug,
		&p.IsPublished, &data, &p.EditableUntil, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scan project: %v", apperr.ErrPersistence, err)
	}
	if len(data) > 0 {
		p.Data = json.RawMessage(data)
	}
	return &p, nil
}

// nullableJSON keeps an absent document as SQL NULL rather than invalid JSON.
func nullableJSON(data json.RawMessage) any {
	if len(data) == 0 {
		return nil
	}
	return []byte(data)
}

func (r *PostgresRepo) Create(ctx context.Context, p *Project) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.OwnerEmail, p.TemplateType, p.TemplateCodeHash, p.Slug,
		p.IsPublished, nullableJSON(p.Data), p.EditableUntil, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlugTaken
		}
		return fmt.Errorf("%w: insert project: %v", apperr.ErrPersistence, err)
	}
	return nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (*Project, error) {
	return scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
}

func (r *PostgresRepo) FindByOwner(ctx context.Context, email, template string) ([]*Project, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects
		WHERE owner_email = $1 AND template_type = $2 ORDER BY created_at`, email, template)
	if err != nil {
		return nil, fmt.Errorf("%w: find projects: %v", apperr.ErrPersistence, err)
	}
	defer rows.Close()
	out := []*Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate projects: %v", apperr.ErrPersistence, err)
	}
	return out, nil
}

func (r *PostgresRepo) FindPublishedBySlug(ctx context.Context, slug, template string) (*Project, error) {
	return scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects
		WHERE slug = $1 AND template_type = $2 AND is_published`, slug, template))
}

func (r *PostgresRepo) exec(ctx context.Context, id, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%w: update project %s: %v", apperr.ErrPersistence, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) UpdateData(ctx context.Context, id string, data json.RawMessage, at time.Time) error {
	return r.exec(ctx, id, `UPDATE projects SET data = $2, updated_at = $3 WHERE id = $1`, id, nullableJSON(data), at)
}

func (r *PostgresRepo) SetPublished(ctx context.Context, id string, published bool, at time.Time) error {
	return r.exec(ctx, id, `UPDATE projects SET is_published = $2, updated_at = $3 WHERE id = $1`, id, published, at)
}
