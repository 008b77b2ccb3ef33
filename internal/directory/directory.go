// Package directory provides read access to the enrolled participant list.
package directory

import (
	"context"

	"wordpair/internal/models"
)

// Directory enumerates enrolled participants. Implementations are read-only.
type Directory interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}
