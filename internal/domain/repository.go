package domain

import "context"

// CategoryRepository defines persistence for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	FirstOrCreate(ctx context.Context, name, description, details string) (*Category, error)
	UpdateDetails(ctx context.Context, id int64, details string) error
}

// TemplateRepository defines persistence for generated templates.
type TemplateRepository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id int64) (*Template, error)
	List(ctx context.Context, categoryID int64) ([]Template, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Template, error)
	ListByProject(ctx context.Context, projectName string) ([]Template, error)
}

// JobRepository defines persistence for generation jobs.
type JobRepository interface {
	Create(ctx context.Context, job *GenerationJob) error
	UpdateStatus(ctx context.Context, id int64, status JobStatus, errMsg string) error
	GetByID(ctx context.Context, id int64) (*GenerationJob, error)
}
