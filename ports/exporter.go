package ports

import (
	"adlift/domain/recommend"
	"adlift/models"
)

// Exporter renders a completed run for download.
type Exporter interface {
	// Export renders the experiment's ranked recommendation list.
	Export(exp *models.Experiment, recs []recommend.Recommendation) ([]byte, error)
	// ContentType is the MIME type of the rendered bytes.
	ContentType() string
	// FileExtension is the suggested download extension, without dot.
	FileExtension() string
}
