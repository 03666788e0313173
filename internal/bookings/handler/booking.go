package handler

import (
	"net/http"

	"tourism/internal/bookings/service"
	httputil "tourism/pkg/http"
	"tourism/pkg/logger"
	"tourism/pkg/middleware"
	"tourism/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, auth *middleware.Authenticator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	quote, err := h.service.Quote(r.Context(), middleware.PrincipalFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "Quote", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id"))
	h.respond(w, "GetByID", booking, err)
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Confirm(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id"))
	h.respond(w, "Confirm", booking, err)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.CancelRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			h.writeError(w, "Cancel", err)
			return
		}
	}

	booking, err := h.service.Cancel(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id"), &req)
	h.respond(w, "Cancel", booking, err)
}

func (h *BookingHandler) CheckIn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.CheckIn(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id"))
	h.respond(w, "CheckIn", booking, err)
}

func (h *BookingHandler) CheckOut(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.CheckOut(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id"))
	h.respond(w, "CheckOut", booking, err)
}

func (h *BookingHandler) MarkNoShow(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.MarkNoShow(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id"))
	h.respond(w, "MarkNoShow", booking, err)
}

func (h *BookingHandler) RecordPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.PaymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "RecordPayment", err)
		return
	}

	booking, err := h.service.RecordPayment(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id"), &req)
	h.respond(w, "RecordPayment", booking, err)
}

func (h *BookingHandler) Refund(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Refund(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id"))
	h.respond(w, "Refund", booking, err)
}

func (h *BookingHandler) MarkPaymentFailed(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.PaymentFailureRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			h.writeError(w, "MarkPaymentFailed", err)
			return
		}
	}

	booking, err := h.service.MarkPaymentFailed(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id"), &req)
	h.respond(w, "MarkPaymentFailed", booking, err)
}

func (h *BookingHandler) respond(w http.ResponseWriter, handler string, booking *model.Booking, err error) {
	if err != nil {
		h.writeError(w, handler, err)
		return
	}
	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/bookings/quote", h.auth.Authenticate(h.Quote))
	router.POST("/api/bookings", h.auth.Authenticate(h.Create))
	router.GET("/api/bookings/id/:id", h.auth.Authenticate(h.GetByID))

	router.POST("/api/bookings/id/:id/confirm", h.auth.Authenticate(h.Confirm))
	router.POST("/api/bookings/id/:id/cancel", h.auth.Authenticate(h.Cancel))
	router.POST("/api/bookings/id/:id/check-in", h.auth.Authenticate(h.CheckIn))
	router.POST("/api/bookings/id/:id/check-out", h.auth.Authenticate(h.CheckOut))
	router.POST("/api/bookings/id/:id/no-show", h.auth.Authenticate(h.MarkNoShow))

	router.POST("/api/bookings/id/:id/payments", h.auth.Authenticate(h.RecordPayment))
	router.POST("/api/bookings/id/:id/refund", h.auth.Authenticate(h.Refund))
	router.POST("/api/bookings/id/:id/payment-failed", h.auth.Authenticate(h.MarkPaymentFailed))
}
