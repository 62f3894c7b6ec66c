package repo

import (
	"context"
	"fmt"

	"github.com/juliusiqbal/ai-img-gen/internal/infra"
	"github.com/juliusiqbal/ai-img-gen/internal/sqlinline"
)

// Migrate creates the tables the repositories use.
func Migrate(ctx context.Context, db infra.SQLExecutor) error {
	if _, err := db.Exec(ctx, sqlinline.QCreateSchema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
