package channel

import (
	"context"
)

// Repository defines the operations for persisting channel configuration.
type Repository interface {
	Create(ctx context.Context, ch *Channel) error
	GetByID(ctx context.Context, id ID) (*Channel, error)
	Update(ctx context.Context, ch *Channel) error // Rate limit, interval, send times and signals
	Delete(ctx context.Context, id ID) error
	ListAll(ctx context.Context) ([]*Channel, error)
}
