// Package query serves the chart session over HTTP. Every endpoint speaks
// JSON except /export, which returns the exported document, and /ws, which
// upgrades to the WebSocket feed.
package query

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/datasource"
	"github.com/golammostafa13/chartstudio/errors"
	"github.com/golammostafa13/chartstudio/logger"
	"github.com/golammostafa13/chartstudio/services"
	"github.com/golammostafa13/chartstudio/store"
)

// maxBodyBytes caps request bodies, inline datasets included.
const maxBodyBytes = 32 << 20

type QueryRequest struct {
	Query string `json:"query"`
}

type ChartTypeRequest struct {
	ChartType string `json:"chartType"`
}

type SizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DataResponse summarises a freshly loaded dataset.
type DataResponse struct {
	Columns []string      `json:"columns"`
	Rows    int           `json:"rows"`
	Mapping chart.Mapping `json:"mapping"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string   `json:"error"`
	Hints []string `json:"hints,omitempty"`
}

// Handler routes requests to a session.
type Handler struct {
	session *services.Session
	ws      http.Handler
	sources datasource.Policy
	log     *zap.SugaredLogger
}

type HandlerOption func(*Handler)

// WithSourcePolicy limits the data sources /load, /query and /reload accept.
// Without it only static and sql sources are allowed.
func WithSourcePolicy(p datasource.Policy) HandlerOption {
	return func(h *Handler) { h.sources = p }
}

// NewHandler creates a handler. ws serves GET /ws; nil leaves it unrouted.
func NewHandler(session *services.Session, ws http.Handler, opts ...HandlerOption) *Handler {
	h := &Handler{
		session: session,
		ws:      ws,
		log:     logger.ComponentLogger("http"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the API mux wrapped in request logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /data", h.handleData)
	mux.HandleFunc("POST /query", h.handleQuery)
	mux.HandleFunc("POST /load", h.handleLoad)
	mux.HandleFunc("POST /reload", h.handleReload)
	mux.HandleFunc("PUT /mapping", h.handleMapping)
	mux.HandleFunc("POST /mapping/resolve", h.handleResolve)
	mux.HandleFunc("PUT /chart-type", h.handleChartType)
	mux.HandleFunc("PUT /style/{bucket}", h.handleStyle)
	mux.HandleFunc("POST /style/flush", h.handleFlush)
	mux.HandleFunc("PUT /size", h.handleSize)
	mux.HandleFunc("GET /state", h.handleState)
	mux.HandleFunc("GET /option", h.handleOption)
	mux.HandleFunc("GET /export", h.handleExport)
	mux.HandleFunc("GET /classify", h.handleClassify)
	if h.ws != nil {
		mux.Handle("GET /ws", h.ws)
	}
	return h.logRequests(mux)
}

// handleData loads rows posted inline. The body is a JSON array of row
// objects, or any document with ?path= pointing at one.
func (h *Handler) handleData(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, errors.Wrap(errors.ErrInvalidRequest, "invalid request body"))
		return
	}
	cfg := datasource.Config{
		Type:     datasource.KindStatic,
		JSON:     string(body),
		DataPath: r.URL.Query().Get("path"),
	}
	ds, err := h.session.Load(r.Context(), cfg)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, ds)
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Query == "" {
		h.writeError(w, errors.Wrap(errors.ErrInvalidRequest, "query is required"))
		return
	}
	if _, err := h.sources.Check(datasource.Config{Type: datasource.KindSQL}); err != nil {
		h.writeError(w, err)
		return
	}
	ds, err := h.session.RunQuery(r.Context(), req.Query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, ds)
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	var cfg datasource.Config
	if !h.decode(w, r, &cfg) {
		return
	}
	cfg, err := h.sources.Check(cfg)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ds, err := h.session.Load(r.Context(), cfg)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, ds)
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sources.Check(h.session.State().DataSourceConfig); err != nil {
		h.writeError(w, err)
		return
	}
	ds, err := h.session.Reload(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, ds)
}

func (h *Handler) handleMapping(w http.ResponseWriter, r *http.Request) {
	var patch chart.MappingPatch
	if !h.decode(w, r, &patch) {
		return
	}
	h.session.SetMapping(patch)
	h.writeJSON(w, http.StatusOK, h.session.State().DataMapping)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ResolveMapping(); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.session.State().DataMapping)
}

func (h *Handler) handleChartType(w http.ResponseWriter, r *http.Request) {
	var req ChartTypeRequest
	if !h.decode(w, r, &req) {
		return
	}
	t, err := chart.ParseChartType(req.ChartType)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.session.SetChartType(t); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.publicState())
}

// handleStyle merges a patch into one style bucket. With ?debounce=1 the
// edit is held and 202 Accepted is returned.
func (h *Handler) handleStyle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, errors.Wrap(errors.ErrInvalidRequest, "invalid request body"))
		return
	}
	debounced, _ := strconv.ParseBool(r.URL.Query().Get("debounce"))
	if err := h.session.EditStyleJSON(r.PathValue("bucket"), body, debounced); err != nil {
		h.writeError(w, err)
		return
	}
	status := http.StatusOK
	if debounced {
		status = http.StatusAccepted
	}
	h.writeJSON(w, status, h.session.State().Config)
}

func (h *Handler) handleFlush(w http.ResponseWriter, r *http.Request) {
	h.session.FlushStyle()
	h.writeJSON(w, http.StatusOK, h.session.State().Config)
}

func (h *Handler) handleSize(w http.ResponseWriter, r *http.Request) {
	var req SizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		h.writeError(w, errors.Wrap(errors.ErrInvalidRequest, "width and height must be positive"))
		return
	}
	if err := h.session.Resize(req.Width, req.Height); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.publicState())
}

// publicState is the session state with API header values masked.
func (h *Handler) publicState() store.State {
	st := h.session.State()
	st.DataSourceConfig = st.DataSourceConfig.Redacted()
	return st
}

func (h *Handler) handleOption(w http.ResponseWriter, r *http.Request) {
	opt, err := h.session.Option()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, opt)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "echarts"
	}
	data, contentType, err := h.session.Export(format)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.session.Classify())
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		h.writeError(w, errors.Wrapf(errors.ErrInvalidRequest, "invalid request body: %v", err))
		return false
	}
	return true
}

func (h *Handler) writeData(w http.ResponseWriter, ds chart.Dataset) {
	h.writeJSON(w, http.StatusOK, DataResponse{
		Columns: ds.Columns,
		Rows:    ds.Len(),
		Mapping: h.session.State().DataMapping,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warnw("Failed to encode response", logger.FieldError, err)
	}
}

// writeError maps caller mistakes to 400 and everything else to 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsClientError(err):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrNothingToDraw):
		status = http.StatusUnprocessableEntity
	default:
		h.log.Errorw("Request failed", logger.FieldError, err)
	}
	h.writeJSON(w, status, ErrorResponse{Error: err.Error(), Hints: errors.GetAllHints(err)})
}
