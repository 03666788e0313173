package handler

import (
	"net/http"

	"tourism/internal/discounts/service"
	httputil "tourism/pkg/http"
	"tourism/pkg/logger"
	"tourism/pkg/middleware"
	"tourism/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type DiscountHandler struct {
	service service.DiscountService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewDiscountHandler(service service.DiscountService, auth *middleware.Authenticator, log *logger.Logger) *DiscountHandler {
	return &DiscountHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *DiscountHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var d model.DiscountCode
	if err := httputil.DecodeJSON(r, &d); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), &d); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, d); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *DiscountHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *DiscountHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/admin/discounts", h.auth.Authenticate(h.Create))
}
