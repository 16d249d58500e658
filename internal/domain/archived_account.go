package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ArchivedAccount keeps a JSON snapshot of a deleted account.
type ArchivedAccount struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AccountID int64          `json:"accountId" gorm:"not null"`
	Account   datatypes.JSON `json:"account" gorm:"not null"`
	CreatedAt time.Time      `json:"createdAt"`
}
