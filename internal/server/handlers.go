package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spidermap/pkg/buildinfo"
	"github.com/matzehuels/spidermap/pkg/errors"
	"github.com/matzehuels/spidermap/pkg/mapview"
	"github.com/matzehuels/spidermap/pkg/pipeline"
	"github.com/matzehuels/spidermap/pkg/render"
	"github.com/matzehuels/spidermap/pkg/spider"
	"github.com/matzehuels/spidermap/pkg/spider/layout"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Version})
}

// layoutResponse is the body of GET /api/layout.
type layoutResponse struct {
	Mode       layout.Mode        `json:"mode"`
	Count      int                `json:"count"`
	Options    layout.Options     `json:"options"`
	Placements []layout.Placement `json:"placements"`
}

// handleLayout computes placements for ?n= members. Layout options default to
// the server configuration and can be overridden with threshold, min_radius,
// separation, factor and increment.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := strconv.Atoi(q.Get("n"))
	if err != nil || n < 1 || n > MaxLayoutMembers {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "n must be an integer between 1 and %d", MaxLayoutMembers))
		return
	}

	opts, err := layoutFromQuery(s.cfg.Layout, q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		Mode:       layout.ModeFor(n, opts),
		Count:      n,
		Options:    opts,
		Placements: layout.Compute(n, opts),
	})
}

func layoutFromQuery(base layout.Options, q url.Values) (layout.Options, error) {
	opts := base
	if v := q.Get("threshold"); v != "" {
		t, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidOptions, err, "threshold")
		}
		opts.CircleSpiralThreshold = t
	}
	floats := []struct {
		name string
		dst  *float64
	}{
		{"min_radius", &opts.MinCircleRadius},
		{"separation", &opts.MinSpiralAngularSeparation},
		{"factor", &opts.SpiralDistanceFactor},
		{"increment", &opts.SpiralAngleIncrement},
	}
	for _, f := range floats {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidOptions, err, "%s", f.name)
		}
		*f.dst = x
	}
	if err := opts.Validate(); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidOptions, err, "layout")
	}
	return opts, nil
}

// spiderRequest is the body of POST /api/spider.
type spiderRequest struct {
	// Clusters is a GeoJSON FeatureCollection; see package clusters.
	Clusters  json.RawMessage `json:"clusters"`
	ClusterID string          `json:"cluster_id"`
	View      *mapview.View   `json:"view,omitempty"`

	// Options overrides the configured layout fields it names.
	Options json.RawMessage `json:"options,omitempty"`

	Connector *spider.LineStyle `json:"connector,omitempty"`
}

// handleSpider opens one cluster and returns the scene. The response is a
// GeoJSON FeatureCollection unless ?format= selects svg, png or dot.
func (s *Server) handleSpider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	format := r.URL.Query().Get("format")
	if format == "" {
		format = render.FormatJSON
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	var req spiderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if len(req.Clusters) == 0 {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "clusters is required"))
		return
	}

	lo := s.cfg.Layout
	if len(req.Options) > 0 {
		if err := json.Unmarshal(req.Options, &lo); err != nil {
			writeError(w, r, errors.Wrap(errors.ErrCodeInvalidOptions, err, "decode options"))
			return
		}
	}
	view := req.View
	if view == nil {
		v := s.cfg.View
		view = &v
	}
	connector := s.cfg.Connector
	if req.Connector != nil {
		connector = *req.Connector
	}

	result, err := s.runner.Execute(ctx, pipeline.Options{
		Input:          req.Clusters,
		Source:         "request",
		ClusterID:      req.ClusterID,
		View:           view,
		Layout:         lo,
		Connector:      connector,
		ConnectorHover: s.cfg.ConnectorHover,
		Formats:        []string{format},
		Logger:         logger,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Spider-Mode", string(result.Mode))
	w.Header().Set("X-Cache", cacheStatus(result.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func contentType(format string) string {
	switch format {
	case render.FormatSVG:
		return "image/svg+xml"
	case render.FormatPNG:
		return "image/png"
	case render.FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "application/geo+json"
	}
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
