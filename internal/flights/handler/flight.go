package handler

import (
	"net/http"

	"tourism/internal/flights/service"
	httputil "tourism/pkg/http"
	"tourism/pkg/logger"
	"tourism/pkg/middleware"
	"tourism/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type FlightHandler struct {
	service service.FlightService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewFlightHandler(service service.FlightService, auth *middleware.Authenticator, log *logger.Logger) *FlightHandler {
	return &FlightHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *FlightHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var f model.Flight
	if err := httputil.DecodeJSON(r, &f); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), &f); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, f); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *FlightHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	f, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, f); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FlightHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	result, err := h.service.Search(r.Context(), r.URL.Query())
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FlightHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var u model.FlightStatusUpdate
	if err := httputil.DecodeJSON(r, &u); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := h.service.UpdateStatus(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id"), &u); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *FlightHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *FlightHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/flights/search", h.Search)
	router.GET("/api/flights/id/:id", h.GetByID)

	router.POST("/api/flights", h.auth.Authenticate(h.Create))
	router.PATCH("/api/flights/id/:id/status", h.auth.Authenticate(h.UpdateStatus))
}
