package postgres

import (
	"context"
	"database/sql"

	"docforge/internal/model"
	"docforge/internal/repository"
)

// TemplatePostgres is a PostgreSQL implementation of repository.TemplateRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type TemplatePostgres struct {
	db *sql.DB
}

// NewTemplatePostgres creates a new TemplatePostgres repository.
func NewTemplatePostgres(db *sql.DB) *TemplatePostgres {
	return &TemplatePostgres{db: db}
}

var _ repository.TemplateRepository = (*TemplatePostgres)(nil)

const templateColumns = `id, name, original_filename, format, size, storage_path, created_at`

func scanTemplate(row interface{ Scan(...any) error }) (*model.Template, error) {
	var t model.Template
	if err := row.Scan(
		&t.ID,
		&t.Name,
		&t.OriginalFilename,
		&t.Format,
		&t.Size,
		&t.StoragePath,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new template row and returns the stored record.
func (r *TemplatePostgres) Create(ctx context.Context, tmpl *model.Template) (*model.Template, error) {
	const q = `
		INSERT INTO templates (id, name, original_filename, format, size, storage_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + templateColumns + `
	`
	row := r.db.QueryRowContext(ctx, q,
		tmpl.ID,
		tmpl.Name,
		tmpl.OriginalFilename,
		tmpl.Format,
		tmpl.Size,
		tmpl.StoragePath,
		tmpl.CreatedAt,
	)
	return scanTemplate(row)
}

// FindByID fetches a single template by its ID.
func (r *TemplatePostgres) FindByID(ctx context.Context, id string) (*model.Template, error) {
	const q = `SELECT ` + templateColumns + ` FROM templates WHERE id = $1`
	return scanTemplate(r.db.QueryRowContext(ctx, q, id))
}

// FindByName fetches a single template by its stored name.
func (r *TemplatePostgres) FindByName(ctx context.Context, name string) (*model.Template, error) {
	const q = `SELECT ` + templateColumns + ` FROM templates WHERE name = $1`
	return scanTemplate(r.db.QueryRowContext(ctx, q, name))
}

// List returns templates using LIMIT/OFFSET pagination and a total count.
func (r *TemplatePostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Template], error) {
	const qCount = `SELECT COUNT(*) FROM templates`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + templateColumns + `
		FROM templates
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Template]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a template by ID. It does not return an error if the row does not exist.
func (r *TemplatePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM templates WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
