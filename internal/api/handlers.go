package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/granularity"
	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/linker"
	"github.com/starford/jera/internal/phrase"
	"github.com/starford/jera/internal/storage"
)

// Handler holds API route handlers.
type Handler struct {
	svc   *linker.Service
	db    index.PeriodicIndex
	store storage.Provider
	// resync, if set, rebuilds the index after a configuration reload.
	resync func() error
}

// NewHandler creates a new Handler.
func NewHandler(svc *linker.Service, db index.PeriodicIndex, store storage.Provider, resync func() error) *Handler {
	return &Handler{svc: svc, db: db, store: store, resync: resync}
}

// Suggest handles POST /api/suggest.
//
//	@Summary		Recognize and resolve the time expression at the cursor
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SuggestRequest	true	"Line, cursor, and current document"
//	@Success		200		{object}	Suggestion
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/suggest [post]
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Cursor < 0 || req.Cursor > len(req.Line) {
		writeJSON(w, http.StatusBadRequest, errorBody("cursor out of range"))
		return
	}

	s, err := h.svc.Suggest(r.Context(), req.Line, req.Cursor, req.DocName, req.DocPath)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("no expression at cursor"))
		} else {
			slog.Error("suggest failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// CreateLink handles POST /api/links.
//
//	@Summary		Materialize the periodic note for a resolved target
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateLinkRequest	true	"Target granularity and date"
//	@Success		200		{object}	CreateLinkResponse
//	@Success		201		{object}	CreateLinkResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links [post]
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	g := granularity.Granularity(req.Granularity)
	if !g.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid granularity"))
		return
	}
	date, err := time.ParseInLocation(index.DateLayout, req.Date, time.Local)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date, want YYYY-MM-DD"))
		return
	}

	path, created, err := h.svc.Materialize(r.Context(), phrase.Target{Granularity: g, Date: date})
	if err != nil {
		slog.Error("materialize failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, CreateLinkResponse{Path: path, Created: created})
}

// Detect handles GET /api/detect.
//
//	@Summary		Classify a document name as a periodic note
//	@Tags			detect
//	@Produce		json
//	@Param			name	query		string	true	"Document name without extension"
//	@Param			path	query		string	false	"Vault-relative path"
//	@Success		200		{object}	DetectResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/detect [get]
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'name' is required"))
		return
	}
	notePath := r.URL.Query().Get("path")

	g, ok := h.svc.Detect(name, notePath)
	if !ok {
		writeJSON(w, http.StatusOK, DetectResponse{Periodic: false})
		return
	}
	resp := DetectResponse{Periodic: true, Granularity: g}
	if d, decoded := h.svc.DecodeDate(name, notePath, g); decoded {
		resp.Date = d.Format(index.DateLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListPeriodic handles GET /api/periodic.
//
//	@Summary		List indexed periodic notes
//	@Tags			periodic
//	@Produce		json
//	@Param			granularity	query		string	false	"Filter by granularity"
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{object}	PeriodicListResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/periodic [get]
func (h *Handler) ListPeriodic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	g := granularity.Granularity(q.Get("granularity"))
	if g != "" && !g.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid granularity"))
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	notes, total, err := h.db.ListByGranularity(g, limit, offset)
	if err != nil {
		slog.Error("list periodic failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	items := make([]PeriodicNoteItem, 0, len(notes))
	for _, n := range notes {
		items = append(items, PeriodicNoteItem{
			Path:        n.Path,
			Granularity: n.Granularity,
			Date:        n.Date.Format(index.DateLayout),
		})
	}
	writeJSON(w, http.StatusOK, PeriodicListResponse{Notes: items, Total: total})
}

// GetPeriodic handles GET /api/periodic/{granularity}/{date}.
//
//	@Summary		Fetch the periodic note covering a date
//	@Tags			periodic
//	@Produce		json
//	@Param			granularity	path		string	true	"Granularity"
//	@Param			date		path		string	true	"Canonical date (YYYY-MM-DD)"
//	@Success		200			{object}	PeriodicNoteDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/periodic/{granularity}/{date} [get]
func (h *Handler) GetPeriodic(w http.ResponseWriter, r *http.Request) {
	g := granularity.Granularity(chi.URLParam(r, "granularity"))
	if !g.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid granularity"))
		return
	}
	date := chi.URLParam(r, "date")
	if _, err := time.ParseInLocation(index.DateLayout, date, time.Local); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date, want YYYY-MM-DD"))
		return
	}

	path, found, err := h.db.FindByDate(g, date)
	if err != nil {
		slog.Error("find by date failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	content, err := h.store.Read(path)
	if err != nil {
		// Indexed but gone from disk; the watcher will reconcile.
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, PeriodicNoteDetail{
		PeriodicNoteItem: PeriodicNoteItem{Path: path, Granularity: g, Date: date},
		Content:          string(content),
	})
}

// GetConfig handles GET /api/config.
//
//	@Summary		Report the merged engine configuration
//	@Tags			config
//	@Produce		json
//	@Success		200	{object}	ConfigResponse
//	@Security		BearerAuth
//	@Router			/config [get]
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfgs := h.svc.Configs()
	out := make([]GranularityConfig, 0, len(cfgs))
	for _, cfg := range cfgs {
		out = append(out, GranularityConfig{
			Granularity: cfg.Granularity,
			Format:      cfg.Format,
			Folder:      cfg.Folder,
		})
	}
	writeJSON(w, http.StatusOK, ConfigResponse{
		Granularities:  out,
		Scope:          string(h.svc.Scope()),
		WrittenNumbers: h.svc.Flags().WrittenNumbers,
	})
}

// Reload handles POST /api/reload.
//
//	@Summary		Reload settings sources and rebuild the index
//	@Tags			config
//	@Success		204	"Reloaded"
//	@Security		BearerAuth
//	@Router			/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	h.svc.Reload()
	if h.resync != nil {
		if err := h.resync(); err != nil {
			slog.Error("resync after reload failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
