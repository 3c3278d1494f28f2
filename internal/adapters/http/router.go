package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dealdesk/diligence/internal/core/ports"
	"github.com/dealdesk/diligence/internal/observability/metrics"
)

const serviceName = "api"

type TrafficConfig struct {
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxConcurrent    int
	BackpressureWait time.Duration
}

type Router struct {
	findings       ports.FindingService
	contradictions ports.ContradictionService
	gaps           ports.GapService
	chat           ports.ChatService
	exports        ports.ExportService
	metrics        *metrics.HTTPServerMetrics
	traffic        TrafficConfig
}

func NewRouter(
	findings ports.FindingService,
	contradictions ports.ContradictionService,
	gaps ports.GapService,
	chat ports.ChatService,
	exports ports.ExportService,
	httpMetrics *metrics.HTTPServerMetrics,
	traffic TrafficConfig,
) *Router {
	if httpMetrics == nil {
		httpMetrics = metrics.NewHTTPServerMetrics(serviceName)
	}
	if traffic.BackpressureWait <= 0 {
		traffic.BackpressureWait = 100 * time.Millisecond
	}
	return &Router{
		findings:       findings,
		contradictions: contradictions,
		gaps:           gaps,
		chat:           chat,
		exports:        exports,
		metrics:        httpMetrics,
		traffic:        traffic,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.Handle("GET /metrics", rt.metrics.Handler())

	mux.HandleFunc("GET /api/projects/{projectID}/findings", rt.listFindings)
	mux.HandleFunc("POST /api/projects/{projectID}/findings", rt.createFinding)
	mux.HandleFunc("GET /api/projects/{projectID}/findings/{findingID}", rt.getFinding)
	mux.HandleFunc("PATCH /api/projects/{projectID}/findings/{findingID}", rt.editFinding)
	mux.HandleFunc("POST /api/projects/{projectID}/findings/{findingID}/validate", rt.validateFinding)
	mux.HandleFunc("POST /api/projects/{projectID}/findings/{findingID}/reject", rt.rejectFinding)

	mux.HandleFunc("GET /api/projects/{projectID}/contradictions", rt.listContradictions)
	mux.HandleFunc("POST /api/projects/{projectID}/contradictions", rt.createContradiction)
	mux.HandleFunc("POST /api/projects/{projectID}/contradictions/{contradictionID}/resolve", rt.resolveContradiction)

	mux.HandleFunc("GET /api/projects/{projectID}/gaps", rt.listGaps)
	mux.HandleFunc("POST /api/projects/{projectID}/gaps", rt.createGap)
	mux.HandleFunc("PATCH /api/projects/{projectID}/gaps/{gapID}", rt.updateGap)

	mux.HandleFunc("POST /api/projects/{projectID}/chat", rt.chatStream)
	mux.HandleFunc("GET /api/projects/{projectID}/conversations/{conversationID}", rt.getTranscript)

	mux.HandleFunc("GET /api/projects/{projectID}/export/findings.csv", rt.exportFindingsCSV)
	mux.HandleFunc("GET /api/projects/{projectID}/export/findings.xlsx", rt.exportFindingsXLSX)
	mux.HandleFunc("GET /api/projects/{projectID}/export/report.html", rt.exportReportHTML)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.traffic.MaxConcurrent, rt.traffic.BackpressureWait)
	handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	handler = rt.metrics.Middleware(serviceName, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
