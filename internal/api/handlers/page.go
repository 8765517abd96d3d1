package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/Project-Sylos/Canopy/internal/i18n"
	"github.com/Project-Sylos/Canopy/internal/log"
	"github.com/Project-Sylos/Canopy/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

var categoriesPage = template.Must(template.ParseFS(templateFS, "templates/categories.html"))

// pageData is what the categories template renders
type pageData struct {
	Lang     string
	CatsTree template.JS
}

// CategoriesPage renders the tree page with the serialized tree embedded as cats_tree
func (h *CategoryHandler) CategoriesPage(w http.ResponseWriter, req *http.Request) {
	started := time.Now()
	if !h.config.Enabled {
		metrics.ObserveRequest(metrics.EndpointPage, metrics.OutcomeDisabled, started)
		http.NotFound(w, req)
		return
	}

	accept := req.Header.Get("Accept-Language")
	logger := log.FromRequest(req.Context(), h.logger)

	t, err := h.service.Tree(req.Context())
	if err != nil {
		logger.Error("failed to generate tree", "error", err)
		metrics.ObserveRequest(metrics.EndpointPage, metrics.OutcomeFailure, started)
		http.Error(w, h.localizer.Translate(accept, i18n.MsgGenericError), http.StatusInternalServerError)
		return
	}

	// json.Marshal escapes <, > and & so the text is safe inside <script>
	catsTree, err := json.Marshal(t)
	if err != nil {
		logger.Error("failed to encode tree", "error", err)
		metrics.ObserveRequest(metrics.EndpointPage, metrics.OutcomeFailure, started)
		http.Error(w, h.localizer.Translate(accept, i18n.MsgGenericError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	data := pageData{Lang: h.localizer.Match(accept).String(), CatsTree: template.JS(catsTree)}
	if err := categoriesPage.Execute(&buf, data); err != nil {
		logger.Error("failed to render categories page", "error", err)
		metrics.ObserveRequest(metrics.EndpointPage, metrics.OutcomeFailure, started)
		http.Error(w, h.localizer.Translate(accept, i18n.MsgGenericError), http.StatusInternalServerError)
		return
	}

	metrics.SetTreeNodes(t.Count())
	metrics.ObserveRequest(metrics.EndpointPage, metrics.OutcomeSuccess, started)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// IndexHandler serves the site index, the redirect target of non-AJAX admin calls
type IndexHandler struct {
	BaseHandler
	categoriesEnabled bool
}

// NewIndexHandler creates a new index handler
func NewIndexHandler(categoriesEnabled bool, logger *slog.Logger) *IndexHandler {
	return &IndexHandler{BaseHandler: BaseHandler{logger: logger}, categoriesEnabled: categoriesEnabled}
}

// Index handles the index endpoint
func (h *IndexHandler) Index(w http.ResponseWriter, req *http.Request) {
	data := map[string]any{"categories_enabled": h.categoriesEnabled}
	if h.categoriesEnabled {
		data["categories_url"] = "/categories/"
	}
	h.sendSuccess(w, "Canopy", data)
}
