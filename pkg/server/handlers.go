package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/hillchart/pkg/buildinfo"
	"github.com/matzehuels/hillchart/pkg/errors"
	"github.com/matzehuels/hillchart/pkg/export"
	"github.com/matzehuels/hillchart/pkg/hill"
	"github.com/matzehuels/hillchart/pkg/observability"
	"github.com/matzehuels/hillchart/pkg/render/sink"
)

const maxBodyBytes = 64 << 10

type addRequest struct {
	Label    string   `json:"label"`
	Progress *float64 `json:"progress"`
	Position *float64 `json:"position"`
}

type moveRequest struct {
	Progress *float64 `json:"progress"`
	Position *float64 `json:"position"`
}

type nudgeRequest struct {
	Delta float64 `json:"delta"`
}

type markerResponse struct {
	hill.Marker
	Percent int    `json:"percent"`
	Phase   string `json:"phase"`
}

func newMarkerResponse(m hill.Marker) markerResponse {
	return markerResponse{Marker: m, Percent: m.Percent(), Phase: hill.PhaseOf(m.Progress)}
}

type healthResponse struct {
	Status string         `json:"status"`
	Chart  string         `json:"chart"`
	Build  buildinfo.Info `json:"build"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Chart: s.chart.Name(), Build: buildinfo.Get()})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	markers := s.chart.Markers()
	out := make([]markerResponse, len(markers))
	for i, m := range markers {
		out[i] = newMarkerResponse(m)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		m   hill.Marker
		err error
	)
	switch {
	case req.Position != nil && req.Progress != nil:
		err = errors.New(errors.ErrCodeInvalidInput, "give either position or progress, not both")
	case req.Position != nil:
		m, err = s.chart.Add(r.Context(), req.Label, *req.Position)
	case req.Progress != nil:
		m, err = s.chart.AddAt(r.Context(), req.Label, *req.Progress)
	default:
		m, err = s.chart.AddAt(r.Context(), req.Label, DefaultProgress)
	}
	if err != nil && m.ID == "" {
		s.writeError(w, r, err)
		return
	}
	s.writeMutation(w, r, http.StatusCreated, m, err)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	m, err := s.chart.Remove(r.Context(), chi.URLParam(r, "id"))
	if err != nil && m.ID == "" {
		s.writeError(w, r, err)
		return
	}
	s.writeMutation(w, r, http.StatusOK, m, err)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	n, err := s.chart.Clear(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *Server) handleBeginDrag(w http.ResponseWriter, r *http.Request) {
	m, err := s.chart.BeginDrag(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMarkerResponse(m))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var position float64
	switch {
	case req.Position != nil && req.Progress == nil:
		position = *req.Position
	case req.Progress != nil && req.Position == nil:
		if err := errors.ValidateProgress(*req.Progress); err != nil {
			s.writeError(w, r, err)
			return
		}
		position = s.chart.Config().Curve.PositionAt(*req.Progress)
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "give exactly one of position or progress"))
		return
	}

	m, err := s.chart.MoveTo(r.Context(), position)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMarkerResponse(m))
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	m, err := s.chart.Drop(r.Context(), chi.URLParam(r, "id"))
	if err != nil && m.ID == "" {
		s.writeError(w, r, err)
		return
	}
	s.writeMutation(w, r, http.StatusOK, m, err)
}

func (s *Server) handleNudge(w http.ResponseWriter, r *http.Request) {
	var req nudgeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.chart.Nudge(r.Context(), chi.URLParam(r, "id"), req.Delta)
	if err != nil && m.ID == "" {
		s.writeError(w, r, err)
		return
	}
	s.writeMutation(w, r, http.StatusOK, m, err)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts := []sink.JSONOption{sink.WithJSONCurve()}
	if r.URL.Query().Get("alignments") == "true" {
		opts = append(opts, sink.WithJSONAlignments(s.chart.Alignments()))
	}
	data, err := sink.RenderJSON(s.chart.Frame(), opts...)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeRender, err, "render layout"))
		return
	}
	writeBytes(w, "application/json", data)
}

func (s *Server) handleAlignments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.chart.Alignments())
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	observability.Render().OnRenderStart(r.Context(), []string{"svg"})
	data := sink.RenderSVG(s.chart.Frame(), s.svg...)
	observability.Render().OnRenderComplete(r.Context(), []string{"svg"}, time.Since(start), nil)
	writeBytes(w, "image/svg+xml", data)
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	observability.Render().OnRenderStart(r.Context(), []string{"png"})
	data, err := sink.RenderPNG(r.Context(), s.chart.Frame(),
		sink.WithSVGOptions(s.svg...),
		sink.WithCache(s.cache, s.keyer),
	)
	observability.Render().OnRenderComplete(r.Context(), []string{"png"}, time.Since(start), err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, "image/png", data)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.FormatJSON)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := export.Encode(format, s.chart.Name(), s.chart.Markers())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("download") == "true" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+s.chart.Name()+format.Ext()+`"`)
	}
	writeBytes(w, format.ContentType(), data)
}

// writeMutation answers a committed change. A save failure after the
// change is applied is reported in a header; the change itself stands.
func (s *Server) writeMutation(w http.ResponseWriter, r *http.Request, status int, m hill.Marker, saveErr error) {
	if saveErr != nil {
		s.logger.Warn("change applied but not saved", "err", saveErr, "request_id", reqID(r))
		w.Header().Set("X-Hillchart-Save-Error", errors.UserMessage(saveErr))
	}
	writeJSON(w, status, newMarkerResponse(m))
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", reqID(r))
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errors.New(errors.ErrCodeInvalidInput, "request body is empty")
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	if !strings.Contains(contentType, "charset") && strings.HasPrefix(contentType, "text/") {
		contentType += "; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func reqID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
