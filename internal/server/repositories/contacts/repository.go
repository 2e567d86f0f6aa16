package contacts

import (
	"context"
	"time"

	"github.com/mkravets/contactdesk/internal/server/models"
)

// Repository owns all persisted contact operations. Every method takes the
// owning user's id and never returns or mutates rows belonging to another
// owner.
type Repository interface {
	List(ctx context.Context, userID int64, limit, offset int) ([]*models.Contact, error)
	GetByID(ctx context.Context, id, userID int64) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	Delete(ctx context.Context, id, userID int64) (*models.Contact, error)
	Search(ctx context.Context, userID int64, filters map[string]string, limit, offset int) ([]*models.Contact, error)
	UpcomingBirthdays(ctx context.Context, userID int64, today time.Time) ([]*models.Contact, error)
}
