package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"landtrend/domain/core"
	"landtrend/domain/product"
	"landtrend/internal/errors"
)

// productDetail is the metadata view of a stored product: everything a
// consumer needs to reconstruct the time axis and the pixel grid.
type productDetail struct {
	Name      core.ProductName `json:"name"`
	Metric    string           `json:"metric"`
	Kind      product.Kind     `json:"kind"`
	RunID     core.RunID       `json:"run_id"`
	CreatedAt time.Time        `json:"created_at"`
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	CellSize  float64          `json:"cell_size"`
	OriginX   float64          `json:"origin_x"`
	OriginY   float64          `json:"origin_y"`
	Bands     []bandDetail     `json:"bands"`
}

type bandDetail struct {
	Index     int       `json:"index"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
	ValidPct  float64   `json:"valid_pct"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	name := core.ProductName(chi.URLParam(r, "name"))
	p, err := s.store.Get(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}

	g := p.Grid()
	detail := productDetail{
		Name:      p.Name,
		Metric:    p.Metric,
		Kind:      p.Kind,
		RunID:     p.RunID,
		CreatedAt: p.CreatedAt.Time(),
		Width:     g.Width,
		Height:    g.Height,
		CellSize:  g.CellSize,
		OriginX:   g.OriginX,
		OriginY:   g.OriginY,
	}
	total := float64(g.Width * g.Height)
	for _, b := range p.Bands {
		detail.Bands = append(detail.Bands, bandDetail{
			Index:     b.Index,
			Label:     b.Label,
			Timestamp: b.Timestamp.Time(),
			ValidPct:  100 * float64(b.Grid.ValidCount()) / total,
		})
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleSampleProduct(w http.ResponseWriter, r *http.Request) {
	name := core.ProductName(chi.URLParam(r, "name"))

	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, errors.InvalidInput("sample requires numeric x and y query parameters"))
		return
	}

	p, err := s.store.Get(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	samples, err := p.SampleAt(x, y)
	if err != nil {
		writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"product": p.Name,
		"x":       x,
		"y":       y,
		"samples": samples,
	})
}

func (s *Server) handleZonal(w http.ResponseWriter, r *http.Request) {
	if s.zonal == nil {
		writeError(w, errors.NotFound("zonal table"))
		return
	}
	records := s.zonal()
	if records == nil {
		writeError(w, errors.NotFound("zonal table"))
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.summary == nil {
		writeError(w, errors.NotFound("run report"))
		return
	}
	summary := s.summary()
	if summary == nil {
		writeError(w, errors.NotFound("run report"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(summary.HTML())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
