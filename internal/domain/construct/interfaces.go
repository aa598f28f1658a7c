package construct

import "context"

// Repository provides persistence for constructs.
type Repository interface {
	Create(ctx context.Context, c *Construct) error
	Get(ctx context.Context, id string) (*Construct, error)
	GetByName(ctx context.Context, name string) (*Construct, error)
	List(ctx context.Context) ([]Construct, error)
}
