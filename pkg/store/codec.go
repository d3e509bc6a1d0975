package store

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/matzehuels/hillchart/pkg/errors"
	"github.com/matzehuels/hillchart/pkg/hill"
)

// Encode serializes a document as indented JSON.
func Encode(doc Document) ([]byte, error) {
	if doc.Markers == nil {
		doc.Markers = []hill.Marker{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode chart")
	}
	return append(data, '\n'), nil
}

// Decode parses a document. Besides the current format it accepts a bare
// array of markers, field aliases used by the browser app (name, x,
// priorityRank, labelOffset) and numeric ids.
func Decode(data []byte) (Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Document{Version: SchemaVersion, Markers: []hill.Marker{}}, nil
	}

	var raw struct {
		Version   int            `json:"version"`
		Markers   []wireMarker   `json:"markers"`
		UpdatedAt json.RawMessage `json:"updated_at"`
	}
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raw.Markers); err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode milestone list")
		}
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode chart")
	}
	if raw.Version > SchemaVersion {
		return Document{}, errors.New(errors.ErrCodeUnsupported, "chart schema version %d is newer than supported %d", raw.Version, SchemaVersion)
	}

	doc := Document{Version: SchemaVersion, Markers: make([]hill.Marker, len(raw.Markers))}
	// UpdatedAt is advisory; a malformed value decodes as the zero time.
	if len(raw.UpdatedAt) > 0 {
		if err := json.Unmarshal(raw.UpdatedAt, &doc.UpdatedAt); err != nil {
			doc.UpdatedAt = time.Time{}
		}
	}
	for i, w := range raw.Markers {
		doc.Markers[i] = w.marker()
	}
	return doc, nil
}

// wireMarker is the lenient decoding form of hill.Marker.
type wireMarker struct {
	ID       json.RawMessage `json:"id"`
	Label    *string         `json:"label"`
	Name     *string         `json:"name"`
	Position *float64        `json:"position"`
	X        *float64        `json:"x"`
	Progress *float64        `json:"progress"`

	Rank       int64 `json:"priority_rank"`
	RankCompat int64 `json:"priorityRank"`

	LabelOffset       float64 `json:"label_offset"`
	LabelOffsetCompat float64 `json:"labelOffset"`
}

func (w wireMarker) marker() hill.Marker {
	m := hill.Marker{
		ID:          decodeID(w.ID),
		Position:    math.NaN(),
		Progress:    math.NaN(),
		Rank:        max(w.Rank, w.RankCompat),
		LabelOffset: w.LabelOffset,
	}
	if m.LabelOffset == 0 {
		m.LabelOffset = w.LabelOffsetCompat
	}
	switch {
	case w.Label != nil:
		m.Label = *w.Label
	case w.Name != nil:
		m.Label = *w.Name
	}
	switch {
	case w.Position != nil:
		m.Position = *w.Position
	case w.X != nil:
		m.Position = *w.X
	}
	if w.Progress != nil {
		m.Progress = *w.Progress
	}
	return m
}

// decodeID accepts string and numeric ids. Anything else decodes as empty
// and gets a fresh id when the engine loads the marker.
func decodeID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}
