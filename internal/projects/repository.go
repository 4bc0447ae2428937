package projects

import (
	"context"
	"encoding/json"
	"time"
)

// Repository defines persistence operations for projects. Lookups that match
// nothing return ErrNotFound.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	// FindByOwner lists the owner's projects for one template.
	FindByOwner(ctx context.Context, email, template string) ([]*Project, error)
	FindPublishedBySlug(ctx context.Context, slug, template string) (*Project, error)
	// UpdateData overwrites the stored document. The publish flag is untouched.
	UpdateData(ctx context.Context, id string, data json.RawMessage, at time.Time) error
	// SetPublished flips the publish flag. The stored document is untouched.
	SetPublished(ctx context.Context, id string, published bool, at time.Time) error
}
