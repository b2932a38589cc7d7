package docs

import (
	"strings"

	"github.com/pkg/errors"
)

// Default marker comments around the generated skills table.
const (
	DefaultStartMarker = "<!-- skills-table:start -->"
	DefaultEndMarker   = "<!-- skills-table:end -->"
)

var (
	// ErrMarkerNotFound is returned when a marker comment is absent.
	ErrMarkerNotFound = errors.New("marker not found")
	// ErrMarkersOutOfOrder is returned when the end marker precedes the start marker.
	ErrMarkersOutOfOrder = errors.New("end marker precedes start marker")
)

// Markers delimit the generated region of a document.
type Markers struct {
	Start string
	End   string
}

// DefaultMarkers returns the built-in markers
func DefaultMarkers() Markers {
	return Markers{Start: DefaultStartMarker, End: DefaultEndMarker}
}

// Splice replaces everything between the first start marker and the
// following end marker with content. The markers themselves are kept.
func Splice(doc, content string, m Markers) (string, error) {
	start := strings.Index(doc, m.Start)
	if start < 0 {
		return "", errors.Wrapf(ErrMarkerNotFound, "start marker %q", m.Start)
	}

	bodyStart := start + len(m.Start)
	end := strings.Index(doc[bodyStart:], m.End)
	if end < 0 {
		if strings.Contains(doc[:start], m.End) {
			return "", errors.WithStack(ErrMarkersOutOfOrder)
		}
		return "", errors.Wrapf(ErrMarkerNotFound, "end marker %q", m.End)
	}
	end += bodyStart

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return doc[:bodyStart] + "\n" + content + doc[end:], nil
}
