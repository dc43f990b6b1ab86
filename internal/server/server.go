// Package server exposes the dashboard over HTTP: the interactive page, static
// chart renders, a JSON API and Prometheus metrics.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/justinas/alice"

	"github.com/rewired-gh/broadway/internal/chart"
	"github.com/rewired-gh/broadway/internal/dashboard"
	"github.com/rewired-gh/broadway/internal/logger"
	"github.com/rewired-gh/broadway/internal/metrics"
	"github.com/rewired-gh/broadway/internal/models"
)

// Options configures the page text and the metrics endpoint.
type Options struct {
	Title      string
	Paragraphs []string
	// MetricsPath is empty when metrics are not exposed.
	MetricsPath string
}

// Server serves a dashboard.Controller.
type Server struct {
	controller *dashboard.Controller
	metrics    *metrics.Registry
	opts       Options
	handler    http.Handler
}

// New builds the routes and the middleware chain. reg may be nil.
func New(c *dashboard.Controller, reg *metrics.Registry, opts Options) *Server {
	s := &Server{
		controller: c,
		metrics:    reg,
		opts:       opts,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /select", s.handleSelect)
	mux.HandleFunc("GET /chart.svg", s.handleChartSVG)
	mux.HandleFunc("GET /chart.png", s.handleChartPNG)
	mux.HandleFunc("GET /echarts", s.handleECharts)
	mux.HandleFunc("GET /api/aggregates", s.handleAggregates)
	mux.HandleFunc("GET /api/theatres", s.handleTheatres)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if opts.MetricsPath != "" && reg != nil {
		mux.Handle("GET "+opts.MetricsPath, reg.Handler())
	}

	s.handler = alice.New(RequestID, Recover, LogRequest, Instrument(reg)).Then(mux)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em auto; max-width: 1000px; color: #222; }
form { margin-bottom: 1em; }
svg text { font-family: sans-serif; }
nav a { margin-right: 1em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<form method="post" action="/select">
<label for="theatre">Theatre:</label>
<select id="theatre" name="theatre" onchange="this.form.submit()">
{{- range .Options}}
<option value="{{.Name}}" {{if .Selected}}selected="selected"{{end}}>{{.Name}}</option>
{{- end}}
</select>
<noscript><button type="submit">Show</button></noscript>
</form>
<div id="chart">{{.Chart}}</div>
{{range .Paragraphs}}<p>{{.}}</p>
{{end -}}
<nav><a href="/chart.svg">SVG</a><a href="/chart.png">PNG</a><a href="/echarts">Interactive</a><a href="/api/aggregates">JSON</a></nav>
</body>
</html>
`))

type option struct {
	Name     string
	Selected bool
}

type pageData struct {
	Title      string
	Options    []option
	Chart      template.HTML
	Paragraphs []string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	frame := s.controller.Frame()
	if theatre := r.URL.Query().Get("theatre"); theatre != "" {
		frame = s.controller.SetSelection(theatre)
	}

	svg, err := frame.SVG()
	if err != nil {
		s.fail(w, r, "failed to render chart", err)
		return
	}

	options := s.controller.Options()
	data := pageData{
		Title:      s.opts.Title,
		Options:    make([]option, 0, len(options)),
		Chart:      svg,
		Paragraphs: s.opts.Paragraphs,
	}
	for _, name := range options {
		data.Options = append(data.Options, option{Name: name, Selected: name == frame.Selection})
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		s.fail(w, r, "failed to render page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	theatre := r.PostForm.Get("theatre")
	if theatre == "" {
		http.Error(w, "theatre is required", http.StatusBadRequest)
		return
	}
	s.controller.SetSelection(theatre)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// selection resolves ?theatre= against the current selection.
func (s *Server) selection(r *http.Request) (string, []models.YearlyAggregate) {
	theatre := r.URL.Query().Get("theatre")
	if theatre == "" {
		theatre = s.controller.Selection()
	}
	return theatre, s.controller.AggregatesFor(theatre)
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	theatre, aggs := s.selection(r)

	var buf bytes.Buffer
	err := chart.RenderStatic(&buf, chart.FormatSVG, aggs, s.controller.Layout())
	if errors.Is(err, chart.ErrNoData) {
		// An empty axis frame instead of an error image.
		buf.Reset()
		err = chart.NewScene(s.controller.Layout()).Update(theatre, aggs).WriteSVG(&buf)
	}
	if err != nil {
		s.fail(w, r, "failed to render SVG", err)
		return
	}
	s.metrics.ObserveRender("svg", start)

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	_, aggs := s.selection(r)

	var buf bytes.Buffer
	err := chart.RenderStatic(&buf, chart.FormatPNG, aggs, s.controller.Layout())
	if errors.Is(err, chart.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.fail(w, r, "failed to render PNG", err)
		return
	}
	s.metrics.ObserveRender("png", start)

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleECharts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	theatre, aggs := s.selection(r)

	var buf bytes.Buffer
	if err := chart.RenderECharts(&buf, aggs, s.controller.Layout(), theatre); err != nil {
		s.fail(w, r, "failed to render echarts page", err)
		return
	}
	s.metrics.ObserveRender("echarts", start)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

type aggregatesResponse struct {
	Selection  string                   `json:"selection"`
	Aggregates []models.YearlyAggregate `json:"aggregates"`
}

func (s *Server) handleAggregates(w http.ResponseWriter, r *http.Request) {
	theatre, aggs := s.selection(r)
	s.writeJSON(w, r, aggregatesResponse{Selection: theatre, Aggregates: aggs})
}

type theatresResponse struct {
	Selection string   `json:"selection"`
	Options   []string `json:"options"`
}

func (s *Server) handleTheatres(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, theatresResponse{
		Selection: s.controller.Selection(),
		Options:   s.controller.Options(),
	})
}

type healthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, healthResponse{Status: "ok", Records: s.controller.RecordCount()})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.fail(w, r, "failed to encode response", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger.Get().Error().
		Err(err).
		Str("request_id", RequestIDFromContext(r.Context())).
		Str("path", r.URL.Path).
		Msg(msg)
	http.Error(w, msg, http.StatusInternalServerError)
}
