package handler

import (
	"net/http"

	"tourism/internal/reviews/service"
	apperrors "tourism/pkg/errors"
	httputil "tourism/pkg/http"
	"tourism/pkg/logger"
	"tourism/pkg/middleware"
	"tourism/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReviewHandler struct {
	service service.ReviewService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewReviewHandler(service service.ReviewService, auth *middleware.Authenticator, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ReviewCreate
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	review, err := h.service.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), &req)
	if err != nil {
		// An already reviewed booking is a client error on this route.
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			err = apperrors.AsAppError(err).WithStatus(http.StatusBadRequest)
		}
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, review); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.ReviewUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	review, err := h.service.Update(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, review); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *ReviewHandler) ToggleHelpful(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	result, err := h.service.ToggleHelpful(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "ToggleHelpful", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "ToggleHelpful", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) Respond(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.HostResponseCreate
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Respond", err)
		return
	}

	review, err := h.service.Respond(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Respond", err)
		return
	}

	if err := httputil.WriteSuccess(w, review); err != nil {
		h.log.Error("failed to write success response", "handler", "Respond", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) ListByProperty(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	list, err := h.service.ListByProperty(r.Context(), ps.ByName("propertyId"), r.URL.Query())
	if err != nil {
		h.writeError(w, "ListByProperty", err)
		return
	}

	if err := httputil.WriteSuccess(w, list); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByProperty", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReviewHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/reviews/property/:propertyId", h.ListByProperty)

	router.POST("/api/reviews", h.auth.Authenticate(h.Create))
	router.PUT("/api/reviews/id/:id", h.auth.Authenticate(h.Update))
	router.DELETE("/api/reviews/id/:id", h.auth.Authenticate(h.Delete))
	router.POST("/api/reviews/id/:id/helpful", h.auth.Authenticate(h.ToggleHelpful))
	router.POST("/api/reviews/id/:id/response", h.auth.Authenticate(h.Respond))
}
