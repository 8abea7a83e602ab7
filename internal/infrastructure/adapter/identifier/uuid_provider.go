package identifier

import (
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	"github.com/google/uuid"
)

// UUIDProvider implements the IDProvider interface with random UUIDs
type UUIDProvider struct{}

// NewUUIDProvider creates a new uuid-based id provider
func NewUUIDProvider() core.IDProvider {
	return &UUIDProvider{}
}

// NewID returns a fresh UUIDv4 string
func (p *UUIDProvider) NewID() string {
	return uuid.NewString()
}
