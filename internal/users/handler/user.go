package handler

import (
	"net/http"

	"tourism/internal/users/service"
	httputil "tourism/pkg/http"
	"tourism/pkg/logger"
	"tourism/pkg/middleware"
	"tourism/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, auth *middleware.Authenticator, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, err := h.service.GetProfile(r.Context(), middleware.PrincipalFromContext(r.Context()))
	h.respond(w, "GetProfile", user, err)
}

// UpdateProfile decodes into a DTO without credential or role fields, so
// those keys in the payload are dropped.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var updates model.ProfileUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "UpdateProfile", err)
		return
	}
	user, err := h.service.UpdateProfile(r.Context(), middleware.PrincipalFromContext(r.Context()), &updates)
	h.respond(w, "UpdateProfile", user, err)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.PasswordChange
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "ChangePassword", err)
		return
	}
	if err := h.service.ChangePassword(r.Context(), middleware.PrincipalFromContext(r.Context()), &req); err != nil {
		h.writeError(w, "ChangePassword", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *UserHandler) Bookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := h.service.Bookings(r.Context(), middleware.PrincipalFromContext(r.Context()), r.URL.Query())
	h.respond(w, "Bookings", page, err)
}

func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Stats(r.Context(), middleware.PrincipalFromContext(r.Context()))
	h.respond(w, "Stats", stats, err)
}

func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var updates model.PreferencesUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "UpdatePreferences", err)
		return
	}
	prefs, err := h.service.UpdatePreferences(r.Context(), middleware.PrincipalFromContext(r.Context()), &updates)
	h.respond(w, "UpdatePreferences", prefs, err)
}

func (h *UserHandler) ListPaymentMethods(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	methods, err := h.service.ListPaymentMethods(r.Context(), middleware.PrincipalFromContext(r.Context()))
	h.respond(w, "ListPaymentMethods", methods, err)
}

func (h *UserHandler) AddPaymentMethod(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.PaymentMethodCreate
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "AddPaymentMethod", err)
		return
	}
	method, err := h.service.AddPaymentMethod(r.Context(), middleware.PrincipalFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, "AddPaymentMethod", err)
		return
	}
	if err := httputil.WriteCreated(w, method); err != nil {
		h.log.Error("failed to write created response", "handler", "AddPaymentMethod", "operation", "WriteCreated", "error", err)
	}
}

func (h *UserHandler) RemovePaymentMethod(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.RemovePaymentMethod(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("methodId")); err != nil {
		h.writeError(w, "RemovePaymentMethod", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.service.Delete(r.Context(), middleware.PrincipalFromContext(r.Context())); err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := h.service.List(r.Context(), middleware.PrincipalFromContext(r.Context()), r.URL.Query())
	h.respond(w, "List", page, err)
}

func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.RoleUpdate
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SetRole", err)
		return
	}
	user, err := h.service.SetRole(r.Context(), middleware.PrincipalFromContext(r.Context()), ps.ByName("id"), &req)
	h.respond(w, "SetRole", user, err)
}

func (h *UserHandler) respond(w http.ResponseWriter, handler string, data any, err error) {
	if err != nil {
		h.writeError(w, handler, err)
		return
	}
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/users/me", h.auth.Authenticate(h.GetProfile))
	router.PUT("/api/users/me", h.auth.Authenticate(h.UpdateProfile))
	router.DELETE("/api/users/me", h.auth.Authenticate(h.Delete))
	router.PUT("/api/users/me/password", h.auth.Authenticate(h.ChangePassword))
	router.GET("/api/users/me/bookings", h.auth.Authenticate(h.Bookings))
	router.GET("/api/users/me/stats", h.auth.Authenticate(h.Stats))
	router.PUT("/api/users/me/preferences", h.auth.Authenticate(h.UpdatePreferences))
	router.GET("/api/users/me/payment-methods", h.auth.Authenticate(h.ListPaymentMethods))
	router.POST("/api/users/me/payment-methods", h.auth.Authenticate(h.AddPaymentMethod))
	router.DELETE("/api/users/me/payment-methods/:methodId", h.auth.Authenticate(h.RemovePaymentMethod))

	router.GET("/api/admin/users", h.auth.Authenticate(h.List))
	router.PATCH("/api/admin/users/:id/role", h.auth.Authenticate(h.SetRole))
}
