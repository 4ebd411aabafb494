package policies

import (
	"io"
	"time"
)

type Policy struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FilePath    string    `json:"-"`
	FileURL     string    `json:"fileUrl,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type File struct {
	FileName    string
	ContentType string
	Body        io.Reader
}
