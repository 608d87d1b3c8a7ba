package ports

import (
	"adlift/domain/creative"
	"adlift/domain/metrics"
	"adlift/domain/themes"
)

// EvidenceReader loads the three evidence streams from their upstream
// export files. Implementations own all format concerns; the engine only
// ever sees the already-shaped rows.
type EvidenceReader interface {
	ReadMetricRows(path string) ([]metrics.RawRow, error)
	ReadCommentRows(path string) ([]themes.CommentRow, error)
	ReadCreativeElements(path string) ([]creative.Element, error)
}
