package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"agentic_ad_copy/generator"
	"agentic_ad_copy/report"
)

//go:embed web/templates/*.html
var templateFS embed.FS

// maxRuns bounds how many finished runs stay downloadable.
const maxRuns = 32

type Server struct {
	llm     generator.LLMClient
	timeout time.Duration
	store   *runStore
	tmpl    *template.Template
}

type storedRun struct {
	run    *generator.Run
	report *report.Report
}

// runStore keeps the most recent runs in memory only.
type runStore struct {
	mu    sync.Mutex
	order []string
	runs  map[string]storedRun
}

func newStore() *runStore {
	return &runStore{runs: make(map[string]storedRun)}
}

func (s *runStore) set(id string, r storedRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		s.order = append(s.order, id)
	}
	s.runs[id] = r
	for len(s.order) > maxRuns {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *runStore) get(id string) (storedRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	return r, ok
}

// New builds the server. timeout bounds a single generation run; zero means none.
func New(llm generator.LLMClient, timeout time.Duration) (*Server, error) {
	if llm == nil {
		return nil, errors.New("llm client required")
	}
	tmpl, err := template.ParseFS(templateFS, "web/templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		llm:     llm,
		timeout: timeout,
		store:   newStore(),
		tmpl:    tmpl,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /generate", s.handleGenerateForm)
	mux.HandleFunc("GET /runs/{id}/ads.txt", s.handleDownload)
	mux.HandleFunc("POST /api/generate", s.handleGenerateAPI)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	return logMiddleware(mux)
}

// --- Handlers ---

type formView struct {
	Input     generator.CampaignInput
	AgeGroups []string
	Genders   []string
	Goals     []string
	Tones     []string
	Error     string
}

func newFormView(in generator.CampaignInput, errMsg string) formView {
	return formView{
		Input:     in,
		AgeGroups: generator.AgeGroups,
		Genders:   generator.Genders,
		Goals:     generator.Goals,
		Tones:     generator.Tones,
		Error:     errMsg,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.html", newFormView(generator.CampaignInput{}, ""))
}

func (s *Server) handleGenerateForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := generator.CampaignInput{
		ProductName:        r.PostFormValue("product_name"),
		ProductDescription: r.PostFormValue("product_description"),
		Problem:            r.PostFormValue("problem"),
		USP:                r.PostFormValue("usp"),
		AgeGroup:           r.PostFormValue("age_group"),
		Gender:             r.PostFormValue("gender"),
		Goal:               r.PostFormValue("goal"),
		Tone:               r.PostFormValue("tone"),
	}
	if err := in.ValidateOptions(); err != nil {
		s.render(w, http.StatusBadRequest, "index.html", newFormView(in, err.Error()))
		return
	}

	stored, err := s.generate(r.Context(), in)
	if err != nil {
		s.render(w, http.StatusBadGateway, "error.html", err.Error())
		return
	}
	s.render(w, http.StatusOK, "result.html", stored.report)
}

type generateResp struct {
	RunID       string                     `json:"run_id"`
	Calls       []generator.CallRecord     `json:"calls"`
	CallSummary report.CallSummary         `json:"call_summary"`
	Results     []generator.PlatformResult `json:"results"`
	Export      string                     `json:"export"`
}

func (s *Server) handleGenerateAPI(w http.ResponseWriter, r *http.Request) {
	var in generator.CampaignInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := in.ValidateOptions(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stored, err := s.generate(r.Context(), in)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	calls := stored.run.Calls
	if calls == nil {
		calls = []generator.CallRecord{}
	}
	writeJSON(w, generateResp{
		RunID:       stored.run.ID,
		Calls:       calls,
		CallSummary: stored.report.Summary,
		Results:     stored.run.Results.Items(),
		Export:      stored.report.Export,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.store.get(r.PathValue("id"))
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", report.ExportContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.ExportFilename+`"`)
	_, _ = w.Write([]byte(stored.report.Export))
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]string{
		"age_groups": generator.AgeGroups,
		"genders":    generator.Genders,
		"goals":      generator.Goals,
		"tones":      generator.Tones,
		"platforms":  generator.Platforms(),
	})
}

// --- Helpers ---

// generate runs one submission; a failed run leaves nothing in the store.
func (s *Server) generate(ctx context.Context, in generator.CampaignInput) (storedRun, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	run, err := generator.Generate(ctx, s.llm, in)
	if err != nil {
		slog.Error("Server.generate: run failed", "product", in.ProductName, "error", err)
		return storedRun{}, err
	}
	rep, err := report.Build(run)
	if err != nil {
		return storedRun{}, err
	}
	stored := storedRun{run: run, report: rep}
	s.store.set(run.ID, stored)
	return stored, nil
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var sb strings.Builder
	if err := s.tmpl.ExecuteTemplate(&sb, name, data); err != nil {
		slog.Error("Server.render: template failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(sb.String()))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("http request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
