package dto

// AttachDocumentResponse reports where an uploaded document was stored and which
// extracted fields were merged into the application's form data.
type AttachDocumentResponse struct {
	ApplicationID string         `json:"applicationID"`
	Path          string         `json:"path"`
	URL           string         `json:"url"`
	Merged        map[string]any `json:"merged"`
}
