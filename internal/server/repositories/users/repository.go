package users

import (
	"context"

	"github.com/mkravets/contactdesk/internal/server/models"
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID int64, token *string) error
	UpdateAvatar(ctx context.Context, email string, url string) (*models.User, error)
	Confirm(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) (*models.User, error)
}
