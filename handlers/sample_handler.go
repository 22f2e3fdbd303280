package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"commons/dateparse"
	"commons/logbuf"
	"commons/models"
	"commons/textfmt"
	"commons/threads"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type SampleProcessor interface {
	ProcessSample(sample models.Sample) bool
	Window(key string) (models.WindowState, bool)
	Keys() []string
}

type AnalysisReader interface {
	GetAnalysis(ctx context.Context, key string) (*models.AnalysisResult, error)
}

type SampleHandler struct {
	store     AnalysisReader
	analytics SampleProcessor
	logs      *logbuf.Buffer
	log       *slog.Logger
	now       func() time.Time
}

type analysisResponse struct {
	*models.AnalysisResult
	Age string `json:"age,omitempty"`
}

func NewSampleHandler(store AnalysisReader, analytics SampleProcessor, logs *logbuf.Buffer, logger *slog.Logger) *SampleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SampleHandler{
		store:     store,
		analytics: analytics,
		logs:      logs,
		log:       logger,
		now:       time.Now,
	}
}

func (h *SampleHandler) Register(r *mux.Router) {
	r.Use(requestID, instrument)

	r.HandleFunc("/health", HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/sample", h.HandleSample).Methods(http.MethodPost)
	r.HandleFunc("/analyze", h.HandleAnalyze).Methods(http.MethodGet)
	r.HandleFunc("/windows", h.HandleWindows).Methods(http.MethodGet)
	r.HandleFunc("/windows/{key}", h.HandleWindow).Methods(http.MethodGet)
	r.HandleFunc("/debug/logs", h.HandleLogs).Methods(http.MethodGet)
	r.HandleFunc("/debug/goroutines", HandleGoroutines).Methods(http.MethodGet)
	r.Path("/metrics").Handler(promhttp.Handler())
}

func (h *SampleHandler) HandleSample(w http.ResponseWriter, r *http.Request) {
	var sample models.Sample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := sample.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.analytics.ProcessSample(sample) {
		samplesDroppedTotal.Inc()
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "dropped",
			"key":    sample.Key,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "accepted",
		"key":    sample.Key,
	})
}

// HandleAnalyze returns the last stored analysis for ?key=. An optional
// ?since= dashboard expression ("-15m", "@d") hides older results.
func (h *SampleHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "key parameter is required", http.StatusBadRequest)
		return
	}

	now := h.now()
	var since time.Time
	if expr := r.URL.Query().Get("since"); expr != "" {
		var err error
		if since, err = dateparse.Parse(expr, now); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	result, err := h.store.GetAnalysis(r.Context(), key)
	if err != nil {
		h.log.Error("failed to get analysis", "key", key, "error", err)
		http.Error(w, "Failed to get analysis: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if result == nil || result.ProcessedAt.Before(since) {
		http.Error(w, "no analysis for key "+key, http.StatusNotFound)
		return
	}

	resp := analysisResponse{AnalysisResult: result}
	if age, err := dateparse.Elapsed(result.ProcessedAt, now); err == nil {
		resp.Age = age
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SampleHandler) HandleWindow(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	state, ok := h.analytics.Window(key)
	if !ok {
		http.Error(w, "no window for key "+key, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// HandleWindows lists tracked keys; ?format=text renders a table.
func (h *SampleHandler) HandleWindows(w http.ResponseWriter, r *http.Request) {
	keys := h.analytics.Keys()

	if r.URL.Query().Get("format") != "text" {
		writeJSON(w, http.StatusOK, map[string][]string{"keys": keys})
		return
	}

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		state, ok := h.analytics.Window(k)
		if !ok {
			continue
		}
		avg := "-"
		if state.Average != nil {
			avg = strconv.FormatFloat(*state.Average, 'f', 2, 64)
		}
		rows = append(rows, []string{
			textfmt.Truncate(k, 32),
			strconv.Itoa(state.Fill) + "/" + strconv.Itoa(state.Capacity),
			avg,
			textfmt.Truncate(textfmt.List(state.Samples), 60),
		})
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(textfmt.Table([]string{"KEY", "FILL", "AVERAGE", "SAMPLES"}, rows)))
}

func (h *SampleHandler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	if h.logs == nil {
		http.Error(w, "log buffer disabled", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = h.logs.WriteTo(w)
}

// HandleGoroutines reports goroutine counts by state; ?full=1 dumps all stacks.
func HandleGoroutines(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("full") == "1" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(threads.Dump(true))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":  threads.Count(),
		"states": threads.States(),
	})
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
