package dto

// MediaUpload carries a validated multipart file into the media service.
type MediaUpload struct {
	Data        []byte
	Filename    string
	MimeType    string
	Size        int64
	Description *string
}

type AvatarResponse struct {
	URL         string  `json:"url"`
	Path        string  `json:"path"`
	MimeType    string  `json:"mime_type"`
	Size        int64   `json:"size"`
	Description *string `json:"description,omitempty"`
}

type BackgroundResponse struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}
