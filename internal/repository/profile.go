package repository

import (
	"context"

	"staffingapi/internal/model"
)

// ProfileRepository reads user profiles.
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*model.Profile, error)
}
