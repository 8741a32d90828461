package files

import "time"

// UploadedFile is a registered resume blob. Location is set before the
// record is created and UserID never changes afterwards.
type UploadedFile struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	OriginalName string    `json:"originalName"`
	FileName     string    `json:"fileName"`
	Location     string    `json:"location"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	Extension    string    `json:"extension,omitempty"`
	IsPublic     bool      `json:"isPublic"`
	Description  string    `json:"description,omitempty"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"createdAt"`
}
