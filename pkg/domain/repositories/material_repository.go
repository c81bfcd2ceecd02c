package repositories

import (
	"context"

	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// MaterialRepository provides access to raw material stock positions
type MaterialRepository interface {
	ListRawMaterialStock(ctx context.Context) ([]*entities.RawMaterial, error)
}
