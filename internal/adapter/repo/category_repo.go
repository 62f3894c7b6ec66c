package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/patrickmn/go-cache"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
	"github.com/juliusiqbal/ai-img-gen/internal/infra"
	"github.com/juliusiqbal/ai-img-gen/internal/sqlinline"
)

const (
	categoryCacheTTL     = 5 * time.Minute
	categoryCacheCleanup = 10 * time.Minute
)

// CategoryRepositoryPG implements domain.CategoryRepository. FirstOrCreate
// results are cached by name; reads that carry template counts always hit
// the database.
type CategoryRepositoryPG struct {
	db    infra.SQLExecutor
	cache *cache.Cache
}

// NewCategoryRepository creates a category repository backed by PostgreSQL.
func NewCategoryRepository(db infra.SQLExecutor) *CategoryRepositoryPG {
	return &CategoryRepositoryPG{
		db:    db,
		cache: cache.New(categoryCacheTTL, categoryCacheCleanup),
	}
}

// List returns all categories ordered by name with their template counts.
func (r *CategoryRepositoryPG) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListCategoriesWithCounts)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Details, &c.TemplatesCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// GetByID fetches a category with its template count.
func (r *CategoryRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.db.QueryRow(ctx, sqlinline.QSelectCategoryByID, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.Details, &c.TemplatesCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &c, nil
}

// FirstOrCreate returns the category with the given name, inserting it when
// it does not exist yet.
func (r *CategoryRepositoryPG) FirstOrCreate(ctx context.Context, name, description, details string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name: %w", domain.ErrInvalidInput)
	}
	if cached, ok := r.cache.Get(name); ok {
		c := cached.(domain.Category)
		return &c, nil
	}
	var c domain.Category
	err := r.db.QueryRow(ctx, sqlinline.QFirstOrCreateCategory, name, description, details).
		Scan(&c.ID, &c.Name, &c.Description, &c.Details, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("first or create category %q: %w", name, err)
	}
	r.cache.SetDefault(c.Name, c)
	return &c, nil
}

// UpdateDetails replaces the free-form details stored for a category.
func (r *CategoryRepositoryPG) UpdateDetails(ctx context.Context, id int64, details string) error {
	tag, err := r.db.Exec(ctx, sqlinline.QUpdateCategoryDetails, id, details)
	if err != nil {
		return fmt.Errorf("update category %d: %w", id, err)
	}
	r.forget(id)
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CategoryRepositoryPG) forget(id int64) {
	for key, item := range r.cache.Items() {
		if c, ok := item.Object.(domain.Category); ok && c.ID == id {
			r.cache.Delete(key)
		}
	}
}

var _ domain.CategoryRepository = (*CategoryRepositoryPG)(nil)
