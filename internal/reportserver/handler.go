package reportserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"surveyforge/internal/duckdb"
	"surveyforge/internal/loi"
	"surveyforge/internal/normalize"
	"surveyforge/internal/pipeline"
	"surveyforge/internal/render"
	"surveyforge/internal/survey"
	"surveyforge/internal/validate"
)

// blockedPage is served on / when the survey cannot be rendered.
const blockedPage = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <title>Survey preview</title>
  </head>
  <body>
    <h1>Rendering blocked</h1>
    <p>%s</p>
    <p>See <a href="/api/validation">/api/validation</a> for details.</p>
  </body>
</html>`

// Config captures the settings for serving a survey preview.
type Config struct {
	Addr string
	// Survey is processed once when the handler is built.
	Survey *survey.Document
	// Validator is optional; without it only structural issues block rendering.
	Validator *validate.Validator
	// History is optional and backs /api/runs.
	History        *duckdb.Store
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// validationPayload is served by /api/validation.
type validationPayload struct {
	Log           validate.Log        `json:"validation"`
	Issues        any                 `json:"issues"`
	IssuesGrouped map[string][]string `json:"issues_grouped"`
	Blocked       string              `json:"blocked,omitempty"`
}

// loiPayload is served by /api/loi.
type loiPayload struct {
	Config    loi.Config          `json:"loi_config"`
	Questions []loi.QuestionState `json:"questions"`
}

type errResp struct {
	Error string `json:"error"`
}

type handler struct {
	outcome pipeline.Outcome
	source  *survey.Document
	// working is the document the LOI endpoint starts from.
	working *survey.Document
	history *duckdb.Store
	logger  *zap.Logger
}

// NewHandler processes the survey and builds the preview routes.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Survey == nil {
		return nil, errors.New("reportserver: survey is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	out, err := pipeline.Process(cfg.Survey, cfg.Validator)
	if err != nil {
		return nil, err
	}
	working := out.Validated
	if working == nil {
		working = out.Normalized
	}
	h := &handler{outcome: out, source: cfg.Survey, working: working, history: cfg.History, logger: logger}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, requestLogger(logger))
	r.Use(middleware.Timeout(timeout))

	r.Get("/", h.serveIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/ui-spec", h.serveUISpec)
		r.Get("/validation", h.serveValidation)
		r.Get("/assets", h.serveAssets)
		r.Get("/loi", h.serveLOI)
		r.Get("/runs", h.serveRuns)
	})
	return r, nil
}

// serveIndex writes the HTML preview of the rendered survey.
func (h *handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if h.outcome.Spec == nil {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, fmt.Sprintf(blockedPage, html.EscapeString(h.outcome.Blocked.Error())))
		return
	}
	if err := render.Page(*h.outcome.Spec).Render(r.Context(), w); err != nil {
		h.logger.Error("render page", zap.Error(err))
	}
}

func (h *handler) serveUISpec(w http.ResponseWriter, _ *http.Request) {
	if h.outcome.Spec == nil {
		writeErr(w, http.StatusConflict, h.outcome.Blocked.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.outcome.Spec)
}

func (h *handler) serveValidation(w http.ResponseWriter, _ *http.Request) {
	payload := validationPayload{
		Log:           h.outcome.Log(),
		Issues:        h.outcome.Issues,
		IssuesGrouped: normalize.GroupIssues(h.outcome.Issues),
	}
	if payload.Issues == nil {
		payload.Issues = []any{}
	}
	if h.outcome.Blocked != nil {
		payload.Blocked = h.outcome.Blocked.Error()
	}
	writeJSON(w, http.StatusOK, payload)
}

// serveAssets returns the normalize-then-render bundle of the unvalidated survey.
func (h *handler) serveAssets(w http.ResponseWriter, _ *http.Request) {
	assets, err := pipeline.BuildStaticAssets(h.source)
	if err != nil {
		h.logger.Error("build static assets", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "build static assets failed")
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// serveLOI recalculates visibility on a copy of the survey at ?position=.
func (h *handler) serveLOI(w http.ResponseWriter, r *http.Request) {
	calc := loi.NewCalculator(h.working.Clone())
	position := calc.Position()
	if v := r.URL.Query().Get("position"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > loi.DeepMax {
			writeErr(w, http.StatusBadRequest, "position must be an integer between 0 and 100")
			return
		}
		position = n
	}
	cfg := calc.Apply(position)
	writeJSON(w, http.StatusOK, loiPayload{Config: cfg, Questions: calc.Questions()})
}

func (h *handler) serveRuns(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeErr(w, http.StatusNotFound, "run history is not configured")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	runs, err := h.history.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("list runs", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []duckdb.RunRow{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}

// requestLogger logs one line per request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
