package domain

// FileResult records the outcome of ingesting one source file.
type FileResult struct {
	File          string `json:"file"`
	Success       bool   `json:"success"`
	ContentLength int    `json:"content_length"`
}

// LoadReport summarizes a bulk load: per-file outcomes, the resulting
// document count, and a small sample of stored documents.
type LoadReport struct {
	Cleared        int64        `json:"cleared,omitempty"`
	FileResults    []FileResult `json:"file_results"`
	DocumentsCount int          `json:"documents_count"`
	Documents      []*Document  `json:"documents"`
}

// Failed reports whether any file in the load failed.
func (r *LoadReport) Failed() bool {
	for _, fr := range r.FileResults {
		if !fr.Success {
			return true
		}
	}
	return false
}
