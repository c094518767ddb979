// Package server exposes the dashboard over HTTP: a JSON API for filter,
// report and export interactions plus a server-rendered overview page.
package server

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"supplydash/internal/dataset"
	"supplydash/internal/export"
	"supplydash/internal/filter"
	"supplydash/internal/metrics"
	"supplydash/internal/report"
)

// Server wires the report service into a gin engine.
type Server struct {
	svc    *report.Service
	engine *gin.Engine
	page   *template.Template
}

// New builds the server and registers all routes.
func New(svc *report.Service) (*Server, error) {
	page, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("server: parse index template: %w", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestMetrics())

	s := &Server{svc: svc, engine: engine, page: page}

	engine.GET("/healthz", s.handleHealthz)
	engine.GET("/", s.handleIndex)
	engine.GET("/api/columns", s.handleColumns)
	engine.POST("/api/report", s.handleReport)
	engine.POST("/api/export", s.handleExport)
	engine.GET("/api/snapshots", s.handleSnapshots)

	return s, nil
}

// Handler exposes the engine for tests and custom http.Server setups.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	log.Printf("server: listening on %s (%d rows loaded)", addr, s.svc.Dataset().Len())
	return s.engine.Run(addr)
}

// requestMetrics counts requests and observes latency per route and status.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := metrics.Labels{
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		metrics.IncCounter(metrics.RequestsTotal, 1, labels)
		metrics.ObserveHistogram(metrics.RequestDurationSeconds, time.Since(start).Seconds(), labels)
	}
}

// reportRequest is the body of POST /api/report and /api/export.
type reportRequest struct {
	Filters filter.Spec `json:"filters"`
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"rows":   s.svc.Dataset().Len(),
	})
}

func (s *Server) handleColumns(c *gin.Context) {
	cols, err := s.svc.Columns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": cols})
}

func (s *Server) handleReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	rep, err := s.svc.Build(c.Request.Context(), req.Filters)
	if err != nil {
		status := http.StatusInternalServerError
		var se *dataset.SchemaError
		if errors.As(err, &se) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (s *Server) handleExport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	data, err := s.svc.Export(c.Request.Context(), req.Filters)
	if err != nil {
		status := http.StatusInternalServerError
		var se *dataset.SchemaError
		if errors.As(err, &se) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, export.ContentType, data)
}

func (s *Server) handleSnapshots(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	snaps, err := s.svc.Snapshots(c.Request.Context(), limit)
	if err != nil {
		log.Printf("server: list snapshots: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list snapshots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshots": snaps,
		"count":     len(snaps),
	})
}

// indexData feeds the overview template.
type indexData struct {
	Report  *report.Report
	Columns []report.ColumnValues
}

func (s *Server) handleIndex(c *gin.Context) {
	rep, err := s.svc.Build(c.Request.Context(), nil)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to build report: %v", err)
		return
	}
	cols, err := s.svc.Columns()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to list columns: %v", err)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(c.Writer, indexData{Report: rep, Columns: cols}); err != nil {
		log.Printf("server: render index: %v", err)
	}
}

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Supply Chain Dashboard</title>
</head>
<body>
<h1>Supply Chain Dashboard</h1>
<p class="rows">{{.Report.RowCount}} of {{.Report.TotalRows}} records</p>

<section id="filters">
{{range .Columns}}
<label>{{.Name}}
<select name="{{.Name}}" multiple>
{{range .Values}}<option value="{{.}}">{{.}}</option>
{{end}}</select>
</label>
{{end}}
</section>

<section id="kpis">
{{range .Report.KPIs}}
<div class="kpi" data-name="{{.Name}}">
<span class="label">{{.Label}}</span>
<span class="value">{{.Formatted}}</span>
</div>
{{end}}
</section>

<section id="insights">
<ul>
{{range .Report.Insights}}
<li data-name="{{.Name}}"><strong>{{.Label}}:</strong> {{.Key}} ({{.Formatted}})</li>
{{end}}
</ul>
</section>

<section id="routes">
<table>
<thead><tr><th>Route</th><th>Shipments</th></tr></thead>
<tbody>
{{range .Report.Routes}}
<tr><td>{{.Value}}</td><td>{{.Count}}</td></tr>
{{end}}
</tbody>
</table>
</section>
</body>
</html>
`
