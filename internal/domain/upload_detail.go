package domain

import (
	"time"

	"github.com/google/uuid"
)

// UploadDetail describes one uploaded file. The stored filename on disk is
// the id plus the original extension.
type UploadDetail struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	StoragePath string    `json:"-" gorm:"not null"`
	Filename    string    `json:"filename" gorm:"not null"`
	FileSize    int64     `json:"fileSize" gorm:"not null"`
	Mimetype    string    `json:"mimetype" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
}
