package repositories

import (
	"context"
	"time"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

// SessionRepository defines data access methods for shell sessions
type SessionRepository interface {
	Create(ctx context.Context, session *entities.Session) error
	GetByID(ctx context.Context, id string) (*entities.Session, error)
	Update(ctx context.Context, session *entities.Session) error
	Delete(ctx context.Context, id string) error
	// ExpireSessions marks every active session past its deadline as
	// expired and returns their ids.
	ExpireSessions(ctx context.Context) ([]string, error)
	CountActive(ctx context.Context) (int, error)
}

// MediaBlob is a generated clip served to the browser.
type MediaBlob struct {
	ID        string
	MIMEType  string
	Data      []byte
	CreatedAt time.Time
}

// MediaStore keeps generated media for a limited time.
type MediaStore interface {
	Put(ctx context.Context, blob *MediaBlob) error
	Get(ctx context.Context, id string) (*MediaBlob, error)
	Delete(ctx context.Context, id string) error
}
