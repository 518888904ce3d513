package repository

import (
	"context"

	"github.com/quantumglobal/requisition/internal/models"
)

// Store is the record store for requisition documents. Records are keyed
// by id; Upsert is a full replace of the stored document. GetByID of a
// missing id returns (nil, nil).
type Store interface {
	List(ctx context.Context) ([]*models.Requisition, error)
	GetByID(ctx context.Context, id string) (*models.Requisition, error)
	Upsert(ctx context.Context, req *models.Requisition) error
	Delete(ctx context.Context, id string) error
}
