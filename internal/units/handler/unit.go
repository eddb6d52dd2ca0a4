package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"staydesk/internal/units/service"
	"staydesk/pkg/auth"
	"staydesk/pkg/contracts"
	apperrors "staydesk/pkg/errors"
	httputil "staydesk/pkg/http"
	"staydesk/pkg/logger"
	"staydesk/pkg/model"
)

var _ contracts.RouteRegistrar = (*UnitHandler)(nil)

type UnitHandler struct {
	service service.UnitService
	log     *logger.Logger
}

func NewUnitHandler(service service.UnitService, log *logger.Logger) *UnitHandler {
	return &UnitHandler{
		service: service,
		log:     log,
	}
}

func (h *UnitHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *UnitHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var unit model.Unit
	if err := httputil.DecodeJSON(r, &unit); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), auth.CallerFromContext(r.Context()), &unit); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, unit); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *UnitHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	unit, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, unit); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UnitHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	units, totalCount, err := h.service.GetAll(r.Context(), r.URL.Query().Get("kind"), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, units, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *UnitHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.UnitUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := h.service.Update(r.Context(), auth.CallerFromContext(r.Context()), ps.ByName("id"), &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *UnitHandler) SetAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body model.AvailabilityUpdate
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "SetAvailability", err)
		return
	}
	if body.IsAvailable == nil {
		h.writeError(w, "SetAvailability", apperrors.InvalidInput("is_available is required"))
		return
	}

	if err := h.service.SetAvailability(r.Context(), auth.CallerFromContext(r.Context()), ps.ByName("id"), *body.IsAvailable); err != nil {
		h.writeError(w, "SetAvailability", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *UnitHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), auth.CallerFromContext(r.Context()), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *UnitHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/units", h.Create)
	router.GET("/api/v1/units", h.GetAll)
	router.GET("/api/v1/units/id/:id", h.GetByID)
	router.PATCH("/api/v1/units/id/:id", h.Update)
	router.PATCH("/api/v1/units/id/:id/availability", h.SetAvailability)
	router.DELETE("/api/v1/units/id/:id", h.Delete)
}
