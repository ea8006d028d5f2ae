package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/content-optimizer/internal/analyzer"
	"github.com/sells-group/content-optimizer/internal/experiment"
	"github.com/sells-group/content-optimizer/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := initAnalyzer()
		if err != nil {
			return err
		}
		svc, st, err := initExperimentService(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		api := &apiServer{analyzer: a, svc: svc, store: st}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		// Graceful shutdown: drain in-flight requests on a fresh context,
		// since ctx is already cancelled by the time the signal arrives.
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Error("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

type apiServer struct {
	analyzer *analyzer.Analyzer
	svc      *experiment.Service
	store    experiment.Store
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/analyze", func(r chi.Router) {
		r.Post("/", s.handleAnalyzeAll)
		r.Post("/seo", s.handleAnalyzeSEO)
		r.Post("/readability", s.handleAnalyzeReadability)
		r.Post("/brandvoice", s.handleAnalyzeBrandVoice)
	})

	r.Route("/experiments", func(r chi.Router) {
		r.Post("/", s.handleCreateExperiment)
		r.Get("/", s.handleListExperiments)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetExperiment)
			r.Patch("/", s.handleUpdateExperiment)
			r.Delete("/", s.handleDeleteExperiment)
			r.Post("/results", s.handleRecordResult)
			r.Get("/analysis", s.handleAnalyzeExperiment)
			r.Post("/complete", s.handleCompleteExperiment)
		})
	})

	return r
}

func (s *apiServer) handleAnalyzeAll(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeContentInput(w, r)
	if !ok {
		return
	}
	report, err := s.analyzer.AnalyzeAll(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *apiServer) handleAnalyzeSEO(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeContentInput(w, r)
	if !ok {
		return
	}
	report, err := s.analyzer.AnalyzeSEO(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *apiServer) handleAnalyzeReadability(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeContentInput(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analyzer.AnalyzeReadability(in.Content))
}

func (s *apiServer) handleAnalyzeBrandVoice(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeContentInput(w, r)
	if !ok {
		return
	}
	report, err := s.analyzer.AnalyzeBrandVoice(r.Context(), in.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *apiServer) handleCreateExperiment(w http.ResponseWriter, r *http.Request) {
	var req experiment.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
		return
	}

	exp, err := s.svc.Create(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "invalid experiment") {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}

func (s *apiServer) handleListExperiments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	experiments, err := s.store.List(r.Context(), experiment.Filter{
		Status:      model.ExperimentStatus(q.Get("status")),
		ContentType: model.ContentType(q.Get("content_type")),
		Platform:    q.Get("platform"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if experiments == nil {
		experiments = []model.Experiment{}
	}
	writeJSON(w, http.StatusOK, experiments)
}

func (s *apiServer) handleGetExperiment(w http.ResponseWriter, r *http.Request) {
	exp, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if exp == nil {
		writeError(w, http.StatusNotFound, eris.New("experiment not found"))
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *apiServer) handleUpdateExperiment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string                 `json:"name"`
		Description *string                 `json:"description"`
		Platform    *string                 `json:"platform"`
		Status      *model.ExperimentStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
		return
	}

	exp, err := s.store.Update(r.Context(), chi.URLParam(r, "id"), experiment.Update{
		Name:        req.Name,
		Description: req.Description,
		Platform:    req.Platform,
		Status:      req.Status,
	})
	if err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *apiServer) handleDeleteExperiment(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleRecordResult(w http.ResponseWriter, r *http.Request) {
	var in experiment.ResultInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
		return
	}

	exp, err := s.svc.RecordResult(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *apiServer) handleAnalyzeExperiment(w http.ResponseWriter, r *http.Request) {
	exp, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if exp == nil {
		writeError(w, http.StatusNotFound, eris.New("experiment not found"))
		return
	}
	writeJSON(w, http.StatusOK, experiment.AnalyzeResults(exp))
}

func (s *apiServer) handleCompleteExperiment(w http.ResponseWriter, r *http.Request) {
	exp, verdict, err := s.svc.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"experiment": exp,
		"verdict":    verdict,
	})
}

func decodeContentInput(w http.ResponseWriter, r *http.Request) (model.ContentInput, bool) {
	var in model.ContentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
		return in, false
	}
	if in.Content == "" {
		writeError(w, http.StatusBadRequest, eris.New("content is required"))
		return in, false
	}
	return in, true
}

func storeErrorStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "transition"), strings.Contains(msg, "non-negative"),
		strings.Contains(msg, "only running"):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
