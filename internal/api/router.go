package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/soaringjerry/Jornada/internal/content"
	"github.com/soaringjerry/Jornada/internal/game"
	"github.com/soaringjerry/Jornada/internal/middleware"
	"github.com/soaringjerry/Jornada/internal/services"
	"github.com/soaringjerry/Jornada/internal/utils"
)

const maxBodyBytes = 64 << 10

type Options struct {
	Games     *services.GameService
	Reports   *services.ReportService
	Exports   *services.ExportService
	Analytics *services.AnalyticsService
	Auth      *services.AdminAuthService
	JWT       *middleware.JWTAuth
	Catalog   *content.Catalog
	Logger    *zap.Logger
	// OnLogin is told about every admin login attempt; nil to ignore.
	OnLogin func(err error)
}

type Router struct {
	store Store
	Options
}

func NewRouter(store Store, opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.OnLogin == nil {
		opts.OnLogin = func(error) {}
	}
	return &Router{store: store, Options: opts}
}

// NewSessionStore returns the in-process session registry. onSize, if set, is
// called with the live session count whenever it changes.
func NewSessionStore(onSize func(n int)) Store {
	s := newMemoryStore()
	s.onSize = onSize
	return s
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/categories", rt.handleCategories)
	mux.HandleFunc("GET /api/bullying-types", rt.handleBullyingTypes)
	mux.HandleFunc("GET /api/bullying-types/{id}", rt.handleBullyingType)

	mux.HandleFunc("POST /api/sessions", rt.handleStartSession)
	mux.HandleFunc("GET /api/sessions/{id}", rt.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", rt.handleAbandonSession)
	mux.HandleFunc("POST /api/sessions/{id}/roll", rt.handleRoll)
	mux.HandleFunc("POST /api/sessions/{id}/answer", rt.handleAnswer)
	mux.HandleFunc("POST /api/sessions/{id}/reset", rt.handleReset)
	mux.HandleFunc("POST /api/sessions/{id}/topics/{typeId}", rt.handleCompleteTopic)
	mux.HandleFunc("GET /api/sessions/{id}/result", rt.handleResult)

	mux.HandleFunc("POST /api/admin/login", rt.handleLogin)
	mux.Handle("GET /api/admin/reports", rt.admin(rt.handleListReports))
	mux.Handle("DELETE /api/admin/reports", rt.admin(rt.handleClearReports))
	mux.Handle("GET /api/admin/reports/stats", rt.admin(rt.handleStats))
	mux.Handle("GET /api/admin/reports/export", rt.admin(rt.handleExportAll))
	mux.Handle("GET /api/admin/reports/{id}", rt.admin(rt.handleGetReport))
	mux.Handle("GET /api/admin/reports/{id}/export", rt.admin(rt.handleExportReport))
	mux.Handle("DELETE /api/admin/reports/{id}", rt.admin(rt.handleDeleteReport))
	mux.Handle("GET /api/admin/audit", rt.admin(rt.handleAudit))
}

func (rt *Router) admin(h http.HandlerFunc) http.Handler {
	return rt.JWT.RequireAdmin(h)
}

// --- catalog ---

type categoryOut struct {
	Tag   game.CategoryTag `json:"tag"`
	Name  string           `json:"name"`
	Color string           `json:"color"`
	Icon  string           `json:"icon"`
}

// GET /api/categories
func (rt *Router) handleCategories(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	out := make([]categoryOut, 0, len(game.Categories))
	for _, c := range game.Categories {
		out = append(out, categoryOut{Tag: c, Name: utils.T(locale, "category."+string(c)), Color: c.Color(), Icon: c.Icon()})
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/bullying-types
func (rt *Router) handleBullyingTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.Catalog.Types)
}

// GET /api/bullying-types/{id}
func (rt *Router) handleBullyingType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		rt.writeError(w, services.NewInvalidError("id must be a number"))
		return
	}
	t, ok := rt.Catalog.Type(id)
	if !ok {
		rt.writeError(w, services.NewNotFoundError("bullying type not found"))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// --- sessions ---

// POST /api/sessions {player_name, mode}
func (rt *Router) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerName string `json:"player_name"`
		Mode       string `json:"mode"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		rt.writeError(w, err)
		return
	}
	v, err := rt.Games.Start(req.PlayerName, req.Mode)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// GET /api/sessions/{id}
func (rt *Router) handleGetSession(w http.ResponseWriter, r *http.Request) {
	v, err := rt.Games.View(r.PathValue("id"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// DELETE /api/sessions/{id}
func (rt *Router) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	if err := rt.Games.Abandon(r.PathValue("id")); err != nil {
		rt.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/sessions/{id}/roll
func (rt *Router) handleRoll(w http.ResponseWriter, r *http.Request) {
	res, err := rt.Games.Roll(r.PathValue("id"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /api/sessions/{id}/answer {option_id}
func (rt *Router) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OptionID string `json:"option_id"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		rt.writeError(w, err)
		return
	}
	res, err := rt.Games.Answer(r.PathValue("id"), req.OptionID)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /api/sessions/{id}/reset
func (rt *Router) handleReset(w http.ResponseWriter, r *http.Request) {
	v, err := rt.Games.Reset(r.PathValue("id"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// POST /api/sessions/{id}/topics/{typeId}
func (rt *Router) handleCompleteTopic(w http.ResponseWriter, r *http.Request) {
	typeID, err := strconv.Atoi(r.PathValue("typeId"))
	if err != nil {
		rt.writeError(w, services.NewInvalidError("typeId must be a number"))
		return
	}
	added, err := rt.Games.CompleteTopic(r.PathValue("id"), typeID)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"type_id": typeID, "added": added})
}

// GET /api/sessions/{id}/result
func (rt *Router) handleResult(w http.ResponseWriter, r *http.Request) {
	res, err := rt.Games.Result(r.PathValue("id"), middleware.LocaleFromContext(r.Context()))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- admin ---

// POST /api/admin/login {password}
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		rt.writeError(w, err)
		return
	}
	res, err := rt.Auth.Login(req.Password)
	rt.OnLogin(err)
	if err != nil {
		rt.store.AddAudit(AuditEntry{Time: time.Now().UTC(), Actor: "anonymous", Action: "admin.login_failed", Note: r.RemoteAddr})
		rt.writeError(w, err)
		return
	}
	rt.store.AddAudit(AuditEntry{Time: time.Now().UTC(), Actor: services.RoleAdmin, Action: "admin.login", Note: r.RemoteAddr})
	writeJSON(w, http.StatusOK, res)
}

// GET /api/admin/reports
func (rt *Router) handleListReports(w http.ResponseWriter, r *http.Request) {
	list, err := rt.Reports.List(r.Context())
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// DELETE /api/admin/reports
func (rt *Router) handleClearReports(w http.ResponseWriter, r *http.Request) {
	if err := rt.Reports.Clear(r.Context()); err != nil {
		rt.writeError(w, err)
		return
	}
	rt.audit(r, "reports.clear", "*")
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/admin/reports/stats
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := rt.Analytics.Stats(r.Context(), middleware.LocaleFromContext(r.Context()))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GET /api/admin/reports/export
func (rt *Router) handleExportAll(w http.ResponseWriter, r *http.Request) {
	res, err := rt.Exports.ExportAll(r.Context(), middleware.LocaleFromContext(r.Context()))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.audit(r, "reports.export", "*")
	writeDownload(w, res)
}

// GET /api/admin/reports/{id}
func (rt *Router) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := rt.Reports.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// GET /api/admin/reports/{id}/export?format=json|csv|html
func (rt *Router) handleExportReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	id := r.PathValue("id")
	res, err := rt.Exports.ExportReport(r.Context(), id, format, middleware.LocaleFromContext(r.Context()))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.audit(r, "report.export", id, "format="+format)
	writeDownload(w, res)
}

// DELETE /api/admin/reports/{id}
func (rt *Router) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := rt.Reports.Delete(r.Context(), id); err != nil {
		rt.writeError(w, err)
		return
	}
	rt.audit(r, "report.delete", id)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/admin/audit
func (rt *Router) handleAudit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.store.ListAudit())
}

func (rt *Router) audit(r *http.Request, action, target string, note ...string) {
	actor := "unknown"
	if c, ok := middleware.ClaimsFromContext(r.Context()); ok {
		actor = c.Subject
	}
	e := AuditEntry{Time: time.Now().UTC(), Actor: actor, Action: action, Target: target}
	if len(note) > 0 {
		e.Note = note[0]
	}
	rt.store.AddAudit(e)
}

// --- helpers ---

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return services.NewInvalidError("request body required")
		}
		return services.NewInvalidError("invalid json: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDownload(w http.ResponseWriter, res *services.ExportResult) {
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	_, _ = w.Write(res.Data)
}

var statusByCode = map[services.ErrorCode]int{
	services.ErrorInvalid:      http.StatusBadRequest,
	services.ErrorUnauthorized: http.StatusUnauthorized,
	services.ErrorForbidden:    http.StatusForbidden,
	services.ErrorNotFound:     http.StatusNotFound,
	services.ErrorConflict:     http.StatusConflict,
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		if status, ok := statusByCode[se.Code]; ok {
			writeJSON(w, status, map[string]string{"error": se.Message})
			return
		}
	}
	rt.Logger.Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
