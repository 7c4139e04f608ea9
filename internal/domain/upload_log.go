package domain

import (
	"time"

	"github.com/google/uuid"
)

// UploadLogEntry captures row level failures that occur during an upload.
type UploadLogEntry struct {
	ID           uuid.UUID `json:"id"`
	FileName     string    `json:"file_name"`
	UploadKind   string    `json:"upload_kind"`
	RowNumber    *int      `json:"row_number,omitempty"`
	ErrorMessage string    `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}
