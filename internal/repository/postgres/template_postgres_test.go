package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"docforge/internal/model"
	"docforge/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var templateCols = []string{"id", "name", "original_filename", "format", "size", "storage_path", "created_at"}

func TestTemplatePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTemplatePostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	tmpl := &model.Template{
		ID:               "test-uuid",
		Name:             "test-uuid.xlsx",
		OriginalFilename: "invoice.xlsx",
		Format:           model.FormatSpreadsheet,
		Size:             2048,
		StoragePath:      "templates/test-uuid.xlsx",
		CreatedAt:        now,
	}

	rows := sqlmock.NewRows(templateCols).
		AddRow(tmpl.ID, tmpl.Name, tmpl.OriginalFilename, tmpl.Format, tmpl.Size, tmpl.StoragePath, tmpl.CreatedAt)

	mock.ExpectQuery("INSERT INTO templates").
		WithArgs(tmpl.ID, tmpl.Name, tmpl.OriginalFilename, string(tmpl.Format), tmpl.Size, tmpl.StoragePath, tmpl.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, tmpl)

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, tmpl.ID, result.ID)
	assert.Equal(t, model.FormatSpreadsheet, result.Format)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplatePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTemplatePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(templateCols).
			AddRow("test-id", "test-id.docx", "letter.docx", "docx", 100, "templates/test-id.docx", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM templates WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(rows)

		tmpl, err := repo.FindByID(ctx, "test-id")

		assert.NoError(t, err)
		require.NotNil(t, tmpl)
		assert.Equal(t, "test-id", tmpl.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM templates WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		tmpl, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, tmpl)
	})
}

func TestTemplatePostgres_FindByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTemplatePostgres(db)

	rows := sqlmock.NewRows(templateCols).
		AddRow("id-1", "id-1.xlsx", "report.xlsx", "xlsx", 512, "templates/id-1.xlsx", time.Now())

	mock.ExpectQuery("SELECT (.+) FROM templates WHERE name = ?").
		WithArgs("id-1.xlsx").
		WillReturnRows(rows)

	tmpl, err := repo.FindByName(context.Background(), "id-1.xlsx")

	assert.NoError(t, err)
	require.NotNil(t, tmpl)
	assert.Equal(t, "id-1.xlsx", tmpl.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplatePostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTemplatePostgres(db)

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rows := sqlmock.NewRows(templateCols).
		AddRow("id-1", "id-1.xlsx", "a.xlsx", "xlsx", 1, "templates/id-1.xlsx", time.Now()).
		AddRow("id-2", "id-2.docx", "b.docx", "docx", 2, "templates/id-2.docx", time.Now())

	mock.ExpectQuery("SELECT (.+) FROM templates ORDER BY").
		WithArgs(10, 0).
		WillReturnRows(rows)

	res, err := repo.List(context.Background(), repository.PageQuery{Limit: 10, Offset: 0})

	assert.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 2, res.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplatePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTemplatePostgres(db)

	mock.ExpectExec("DELETE FROM templates").
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), "id-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
