package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Project-Sylos/Canopy/internal/api/models"
	"github.com/Project-Sylos/Canopy/internal/auth"
	"github.com/Project-Sylos/Canopy/internal/categories"
	"github.com/Project-Sylos/Canopy/internal/i18n"
	"github.com/Project-Sylos/Canopy/internal/log"
	"github.com/Project-Sylos/Canopy/internal/metrics"
	"github.com/Project-Sylos/Canopy/internal/tree"
	"github.com/Project-Sylos/Canopy/internal/types"
)

// maxPayloadBytes bounds the JSON body of the admin endpoints
const maxPayloadBytes = 64 << 10

// msgPostRequired is shown untranslated
const msgPostRequired = "must use POST request"

// CategoryService is the domain side of the category endpoints
type CategoryService interface {
	Tree(ctx context.Context) (tree.Tree, error)
	Add(ctx context.Context, name string, parent *types.NodeID) (*types.Category, error)
	Rename(ctx context.Context, id types.NodeID, name string) (*types.Category, error)
}

// CategoryHandler serves the category tree and its admin endpoints
type CategoryHandler struct {
	BaseHandler
	service   CategoryService
	localizer *i18n.Localizer
	config    types.CategoriesConfig
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(service CategoryService, localizer *i18n.Localizer, config types.CategoriesConfig, logger *slog.Logger) *CategoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryHandler{
		BaseHandler: BaseHandler{logger: logger},
		service:     service,
		localizer:   localizer,
		config:      config,
	}
}

// AddCategory handles the add category endpoint
func (h *CategoryHandler) AddCategory(w http.ResponseWriter, req *http.Request) {
	h.serveAdmin(w, req, metrics.EndpointAdd, func(ctx context.Context, body []byte) error {
		var payload models.AddCategoryRequest
		if err := models.Decode(body, &payload); err != nil {
			return &categories.Error{Kind: categories.KindOther, Message: err.Error(), Err: err}
		}
		_, err := h.service.Add(ctx, payload.Name, payload.ParentID())
		return err
	})
}

// RenameCategory handles the rename category endpoint
func (h *CategoryHandler) RenameCategory(w http.ResponseWriter, req *http.Request) {
	h.serveAdmin(w, req, metrics.EndpointRename, func(ctx context.Context, body []byte) error {
		var payload models.RenameCategoryRequest
		if err := models.Decode(body, &payload); err != nil {
			return &categories.Error{Kind: categories.KindOther, Message: err.Error(), Err: err}
		}
		_, err := h.service.Rename(ctx, payload.NodeID(), payload.Name)
		return err
	})
}

// GetTree handles the tree endpoint, returning the serialized tree as JSON
func (h *CategoryHandler) GetTree(w http.ResponseWriter, req *http.Request) {
	started := time.Now()
	if !h.config.Enabled {
		metrics.ObserveRequest(metrics.EndpointTree, metrics.OutcomeDisabled, started)
		http.NotFound(w, req)
		return
	}

	t, err := h.service.Tree(req.Context())
	if err != nil {
		log.FromRequest(req.Context(), h.logger).Error("failed to generate tree", "error", err)
		metrics.ObserveRequest(metrics.EndpointTree, metrics.OutcomeFailure, started)
		h.sendError(w, http.StatusInternalServerError, h.localizer.Translate(req.Header.Get("Accept-Language"), i18n.MsgGenericError))
		return
	}

	metrics.SetTreeNodes(t.Count())
	metrics.ObserveRequest(metrics.EndpointTree, metrics.OutcomeSuccess, started)
	h.sendJSON(w, http.StatusOK, t)
}

// serveAdmin runs the request protocol shared by the admin endpoints:
// feature gate, AJAX transport, authentication, authorization, then step.
// Only the feature gate and the redirect bypass the response envelope.
func (h *CategoryHandler) serveAdmin(w http.ResponseWriter, req *http.Request, endpoint string, step func(ctx context.Context, body []byte) error) {
	started := time.Now()
	logger := log.FromRequest(req.Context(), h.logger).With("endpoint", endpoint)

	if !h.config.Enabled {
		metrics.ObserveRequest(endpoint, metrics.OutcomeDisabled, started)
		http.NotFound(w, req)
		return
	}

	if req.Header.Get("X-Requested-With") != "XMLHttpRequest" {
		metrics.ObserveRequest(endpoint, metrics.OutcomeRedirected, started)
		http.Redirect(w, req, h.config.IndexURL, http.StatusFound)
		return
	}

	if err := h.runAdmin(req, step); err != nil {
		accept := req.Header.Get("Accept-Language")
		message := h.envelopeMessage(accept, err)
		if categories.KindOf(err) == categories.KindOther {
			logger.Error("category request failed", "error", err)
		} else {
			logger.Warn("category request rejected", "kind", categories.KindOf(err).String(), "reason", message)
		}
		metrics.ObserveRequest(endpoint, metrics.OutcomeFailure, started)
		h.sendJSON(w, http.StatusOK, types.APIResponse{Success: false, Message: message})
		return
	}

	metrics.ObserveRequest(endpoint, metrics.OutcomeSuccess, started)
	h.sendJSON(w, http.StatusOK, types.APIResponse{Success: true})
}

func (h *CategoryHandler) runAdmin(req *http.Request, step func(ctx context.Context, body []byte) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in category handler: %v", r)
		}
	}()

	if req.Method != http.MethodPost {
		return categories.PermissionDenied(msgPostRequired)
	}

	principal := auth.FromContext(req.Context())
	if !principal.IsAuthenticated() {
		return categories.PermissionDenied(i18n.MsgAnonymous)
	}
	if !principal.IsAdministrator() {
		return categories.PermissionDenied(i18n.MsgNotAdmin)
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxPayloadBytes))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	return step(req.Context(), body)
}

// envelopeMessage converts err into the text shown to the caller. Known
// messages are localized; uncategorized failures get the generic apology.
func (h *CategoryHandler) envelopeMessage(accept string, err error) string {
	var ce *categories.Error
	if !errors.As(err, &ce) || ce.Message == "" {
		return h.localizer.Translate(accept, i18n.MsgGenericError)
	}
	switch ce.Kind {
	case categories.KindPermissionDenied, categories.KindValidation:
		return h.localizer.Translate(accept, ce.Message)
	default:
		return ce.Message
	}
}
