package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"staydesk/internal/reservations/service"
	"staydesk/pkg/auth"
	"staydesk/pkg/contracts"
	httputil "staydesk/pkg/http"
	"staydesk/pkg/logger"
	"staydesk/pkg/model"
)

var _ contracts.RouteRegistrar = (*ReservationHandler)(nil)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) writeCreated(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteCreated(w, data); err != nil {
		h.log.Error("failed to write created response", "handler", handler, "operation", "WriteCreated", "error", err)
	}
}

// Availability is public: ?start=&end= in RFC3339.
func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, err := httputil.ParseTimeParam(r, "start")
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	end, err := httputil.ParseTimeParam(r, "end")
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	availability, err := h.service.Availability(r.Context(), ps.ByName("unit_id"), start.UTC(), end.UTC())
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	h.writeSuccess(w, "Availability", availability)
}

func (h *ReservationHandler) CreateHold(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.HoldRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateHold", err)
		return
	}

	hold, err := h.service.CreateHold(r.Context(), auth.CallerFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, "CreateHold", err)
		return
	}

	h.writeCreated(w, "CreateHold", hold)
}

func (h *ReservationHandler) ConfirmHold(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var guest model.GuestDetails
	if err := httputil.DecodeJSON(r, &guest); err != nil {
		h.writeError(w, "ConfirmHold", err)
		return
	}

	reservation, err := h.service.ConfirmHold(r.Context(), auth.CallerFromContext(r.Context()), ps.ByName("id"), &guest)
	if err != nil {
		h.writeError(w, "ConfirmHold", err)
		return
	}

	h.writeSuccess(w, "ConfirmHold", reservation)
}

func (h *ReservationHandler) ReleaseHold(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.ReleaseHold(r.Context(), auth.CallerFromContext(r.Context()), ps.ByName("id")); err != nil {
		h.writeError(w, "ReleaseHold", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ReservationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	reservation, err := h.service.CreateReservation(r.Context(), auth.CallerFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	h.writeCreated(w, "Create", reservation)
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByID(r.Context(), auth.CallerFromContext(r.Context()), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	h.writeSuccess(w, "GetByID", reservation)
}

func (h *ReservationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	query := r.URL.Query()
	filter := model.ReservationFilter{
		UnitID:  query.Get("unit_id"),
		Kind:    query.Get("kind"),
		Status:  query.Get("status"),
		OwnerID: query.Get("owner_id"),
	}

	reservations, totalCount, err := h.service.GetAll(r.Context(), auth.CallerFromContext(r.Context()), filter, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body model.StatusUpdate
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	reservation, err := h.service.Transition(r.Context(), auth.CallerFromContext(r.Context()), ps.ByName("id"), body.Status)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	h.writeSuccess(w, "UpdateStatus", reservation)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.Cancel(r.Context(), auth.CallerFromContext(r.Context()), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	h.writeSuccess(w, "Cancel", reservation)
}

func (h *ReservationHandler) CorrectAmounts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var correction model.AmountsCorrection
	if err := httputil.DecodeJSON(r, &correction); err != nil {
		h.writeError(w, "CorrectAmounts", err)
		return
	}

	reservation, err := h.service.CorrectAmounts(r.Context(), auth.CallerFromContext(r.Context()), ps.ByName("id"), &correction)
	if err != nil {
		h.writeError(w, "CorrectAmounts", err)
		return
	}

	h.writeSuccess(w, "CorrectAmounts", reservation)
}

func (h *ReservationHandler) MarkPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.PaymentUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "MarkPayment", err)
		return
	}

	reservation, err := h.service.MarkPayment(r.Context(), auth.CallerFromContext(r.Context()), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "MarkPayment", err)
		return
	}

	h.writeSuccess(w, "MarkPayment", reservation)
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), auth.CallerFromContext(r.Context()), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability/:unit_id", h.Availability)

	router.POST("/api/v1/holds", h.CreateHold)
	router.POST("/api/v1/holds/id/:id/confirm", h.ConfirmHold)
	router.DELETE("/api/v1/holds/id/:id", h.ReleaseHold)

	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.GetAll)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.PATCH("/api/v1/reservations/id/:id/status", h.UpdateStatus)
	router.POST("/api/v1/reservations/id/:id/cancel", h.Cancel)
	router.PATCH("/api/v1/reservations/id/:id/amounts", h.CorrectAmounts)
	router.PATCH("/api/v1/reservations/id/:id/payment", h.MarkPayment)
	router.DELETE("/api/v1/reservations/id/:id", h.Delete)
}
