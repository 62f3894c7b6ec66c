package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
	"github.com/juliusiqbal/ai-img-gen/internal/infra"
	"github.com/juliusiqbal/ai-img-gen/internal/sqlinline"
)

// TemplateRepositoryPG implements domain.TemplateRepository.
type TemplateRepositoryPG struct {
	db infra.SQLExecutor
}

// NewTemplateRepository creates a template repository backed by PostgreSQL.
func NewTemplateRepository(db infra.SQLExecutor) *TemplateRepositoryPG {
	return &TemplateRepositoryPG{db: db}
}

// Create inserts t and fills in its id and timestamps.
func (r *TemplateRepositoryPG) Create(ctx context.Context, t *domain.Template) error {
	if t == nil || t.CategoryID <= 0 {
		return fmt.Errorf("template category: %w", domain.ErrInvalidInput)
	}
	dims, err := json.Marshal(t.Dimensions)
	if err != nil {
		return fmt.Errorf("marshal dimensions: %w", err)
	}
	var printing []byte
	if t.PrintingDimensions != nil {
		if printing, err = json.Marshal(t.PrintingDimensions); err != nil {
			return fmt.Errorf("marshal printing dimensions: %w", err)
		}
	}
	err = r.db.QueryRow(ctx, sqlinline.QInsertTemplate,
		t.CategoryID,
		t.ProjectName,
		t.OriginalImagePath,
		t.SVGPath,
		dims,
		printing,
		t.PromptUsed,
		t.GenerationPrompt,
		nullableBytes(t.DesignPreferences),
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

// GetByID fetches one template with its category name.
func (r *TemplateRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.Template, error) {
	t, err := scanTemplate(r.db.QueryRow(ctx, sqlinline.QSelectTemplateByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get template %d: %w", id, err)
	}
	return t, nil
}

// List returns templates latest first. A zero categoryID lists every category.
func (r *TemplateRepositoryPG) List(ctx context.Context, categoryID int64) ([]domain.Template, error) {
	return r.list(ctx, "list templates", sqlinline.QListTemplates, categoryID)
}

// ListByIDs returns the templates among ids that exist, ordered by id.
func (r *TemplateRepositoryPG) ListByIDs(ctx context.Context, ids []int64) ([]domain.Template, error) {
	if len(ids) == 0 {
		return []domain.Template{}, nil
	}
	return r.list(ctx, "list templates by id", sqlinline.QListTemplatesByIDs, ids)
}

// ListByProject returns the templates generated under a project name.
func (r *TemplateRepositoryPG) ListByProject(ctx context.Context, projectName string) ([]domain.Template, error) {
	return r.list(ctx, "list templates by project", sqlinline.QListTemplatesByProject, projectName)
}

func (r *TemplateRepositoryPG) list(ctx context.Context, op, query string, arg any) ([]domain.Template, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	templates := make([]domain.Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return templates, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (*domain.Template, error) {
	var (
		t            domain.Template
		dims         []byte
		printing     []byte
		preferences  []byte
		categoryName string
	)
	if err := row.Scan(
		&t.ID,
		&t.CategoryID,
		&t.ProjectName,
		&t.OriginalImagePath,
		&t.SVGPath,
		&dims,
		&printing,
		&t.PromptUsed,
		&t.GenerationPrompt,
		&preferences,
		&t.CreatedAt,
		&t.UpdatedAt,
		&categoryName,
	); err != nil {
		return nil, err
	}
	if len(dims) > 0 {
		if err := json.Unmarshal(dims, &t.Dimensions); err != nil {
			return nil, fmt.Errorf("decode dimensions of template %d: %w", t.ID, err)
		}
	}
	if len(printing) > 0 && string(printing) != "null" {
		var pd domain.PrintDimensions
		if err := json.Unmarshal(printing, &pd); err != nil {
			return nil, fmt.Errorf("decode printing dimensions of template %d: %w", t.ID, err)
		}
		t.PrintingDimensions = &pd
	}
	if len(preferences) > 0 {
		t.DesignPreferences = json.RawMessage(preferences)
	}
	t.Category = &domain.Category{ID: t.CategoryID, Name: categoryName}
	return &t, nil
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

var _ domain.TemplateRepository = (*TemplateRepositoryPG)(nil)
