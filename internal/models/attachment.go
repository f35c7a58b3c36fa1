package models

import "time"

// Attachment references a file held in object storage.
type Attachment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TopicID    uint      `json:"topicId" gorm:"index;not null"`
	FileName   string    `json:"fileName" gorm:"size:255;not null"`
	FileURL    string    `json:"fileUrl" gorm:"type:text;not null"`
	FileKey    string    `json:"fileKey" gorm:"size:512;not null"`
	FileSize   int64     `json:"fileSize"`
	MimeType   string    `json:"mimeType" gorm:"size:100"`
	UploadedBy uint      `json:"uploadedBy" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type DeleteAttachmentRequest struct {
	AttachmentID uint `json:"attachmentId" validate:"required"`
}

type UploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}
