package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bankstream/bankstream/internal/api/middleware"
	"github.com/bankstream/bankstream/internal/categories"
	"github.com/bankstream/bankstream/internal/domain"
	"github.com/bankstream/bankstream/internal/export"
	"github.com/bankstream/bankstream/internal/ingest"
	"github.com/bankstream/bankstream/internal/notes"
	"github.com/bankstream/bankstream/internal/query"
	"github.com/bankstream/bankstream/internal/store"
	"github.com/rs/zerolog"
)

// maxUploadBytes caps statement uploads at 20 MiB, well above any real
// bank statement.
const maxUploadBytes = 20 << 20

// StatementsHandler handles statement upload and session endpoints.
type StatementsHandler struct {
	mgr *ingest.Manager
	log zerolog.Logger
}

// NewStatementsHandler creates a new statements handler.
func NewStatementsHandler(mgr *ingest.Manager, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{mgr: mgr, log: log}
}

// Upload handles POST /api/statements. The statement PDF arrives as the
// "file" part of a multipart form. A valid upload starts a new ingestion
// session, cancelling any session still in flight.
func (h *StatementsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read upload")
		return
	}
	if len(data) > maxUploadBytes {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	sess, err := h.mgr.Start(header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidFile) {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to start ingestion")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to start ingestion")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, sess.Snapshot())
}

// Current handles GET /api/statements/current.
func (h *StatementsHandler) Current(w http.ResponseWriter, r *http.Request) {
	sess := h.mgr.Current()
	if sess == nil {
		middleware.WriteJSON(w, http.StatusOK, ingest.Snapshot{State: ingest.StateIdle})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, sess.Snapshot())
}

// Events handles GET /api/statements/current/events as a server-sent event
// stream: an initial snapshot event, then state and batch events until the
// session finishes or the client disconnects.
func (h *StatementsHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.WriteError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	sess := h.mgr.Current()
	if sess == nil {
		middleware.WriteError(w, http.StatusNotFound, "No active session")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeSSE(w, "snapshot", sess.Snapshot())
	flusher.Flush()

	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				// Session finished; a final snapshot lets late joiners
				// settle on the terminal state.
				writeSSE(w, "snapshot", sess.Snapshot())
				flusher.Flush()
				return
			}
			writeSSE(w, string(ev.Type), ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

// TransactionsHandler handles transaction listing and edits.
type TransactionsHandler struct {
	store *store.TransactionStore
	cats  *categories.Service
	notes *notes.Service
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(txs *store.TransactionStore, cats *categories.Service, n *notes.Service, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: txs, cats: cats, notes: n, log: log}
}

// parseView reads the shared filter and sort query parameters.
func parseView(r *http.Request) (query.Filter, query.Sort, error) {
	q := r.URL.Query()

	f := query.Filter{
		Category: q.Get("category"),
		From:     q.Get("from"),
		To:       q.Get("to"),
		Search:   q.Get("search"),
	}
	if t := q.Get("type"); t != "" {
		typ := domain.TxType(t)
		if !typ.Valid() {
			return query.Filter{}, query.Sort{}, fmt.Errorf("invalid type %q", t)
		}
		f.Type = typ
	}

	var s query.Sort
	switch field := q.Get("sort"); field {
	case "", "none":
	case "date", "amount", "description", "category":
		s.Field = query.SortField(field)
	default:
		return query.Filter{}, query.Sort{}, fmt.Errorf("invalid sort field %q", field)
	}
	switch order := q.Get("order"); order {
	case "", "asc":
	case "desc":
		s.Desc = true
	default:
		return query.Filter{}, query.Sort{}, fmt.Errorf("invalid order %q", q.Get("order"))
	}
	return f, s, nil
}

// List handles GET /api/transactions.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	f, s, err := parseView(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs := query.SortBy(query.Apply(h.store.List(), f), s)

	// Return array directly for frontend compatibility
	middleware.WriteJSON(w, http.StatusOK, txs)
}

// Patch handles PATCH /api/transactions/{id}. Only category and notes are
// editable; absent fields are left untouched.
func (h *TransactionsHandler) Patch(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Category *string `json:"category"`
		Notes    *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Category == nil && req.Notes == nil {
		middleware.WriteError(w, http.StatusBadRequest, "Nothing to update")
		return
	}
	if req.Category != nil && !h.cats.Exists(*req.Category) {
		middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("Unknown category %q", *req.Category))
		return
	}

	tx, ok := h.store.UpdateField(id, store.FieldPatch{Category: req.Category, Notes: req.Notes})
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	if req.Notes != nil {
		h.notes.Save(tx)
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// BulkCategory handles POST /api/transactions/bulk-category.
func (h *TransactionsHandler) BulkCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs      []string `json:"ids"`
		Category string   `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "ids is required")
		return
	}
	if !h.cats.Exists(req.Category) {
		middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("Unknown category %q", req.Category))
		return
	}

	updated := h.store.BulkUpdateCategory(req.IDs, req.Category)
	middleware.WriteJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// CategoriesHandler handles category-related endpoints.
type CategoriesHandler struct {
	svc *categories.Service
	log zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(svc *categories.Service, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{svc: svc, log: log}
}

// List handles GET /api/categories
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	cats := h.svc.List()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": cats,
		"count":      len(cats),
	})
}

// Create handles POST /api/categories
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cat, err := h.svc.Create(req.Name)
	if err != nil {
		writeCategoryError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, cat)
}

// Rename handles PATCH /api/categories/{id}
func (h *CategoriesHandler) Rename(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cat, err := h.svc.Rename(id, req.Name)
	if err != nil {
		writeCategoryError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, cat)
}

// Delete handles DELETE /api/categories/{id}
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.Delete(id); err != nil {
		writeCategoryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCategoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, categories.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, categories.ErrDuplicate):
		middleware.WriteError(w, http.StatusConflict, "Category already exists")
	default:
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	}
}

// ExportHandler serves the CSV download.
type ExportHandler struct {
	store *store.TransactionStore
	log   zerolog.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(txs *store.TransactionStore, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{store: txs, log: log}
}

// Export handles GET /api/export. It honors the same filter and sort
// parameters as the transaction list, so the download matches the view the
// user is looking at.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, s, err := parseView(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs := query.SortBy(query.Apply(h.store.List(), f), s)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := export.Write(w, txs); err != nil {
		h.log.Error().Err(err).Msg("Failed to write CSV export")
	}
}
