package user

import (
	"time"

	"Fluxo/internal/domain/shared"

	"github.com/oklog/ulid/v2"
)

type User struct {
	Id             ulid.ULID      `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Password       string         `json:"-"`
	DefaultContext shared.Context `json:"defaultContext"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
