package attendance

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/transport"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(service *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	rec, err := h.Service.Today(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"record": rec})
}

func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.dashboardAction(w, r, h.Service.ClockIn)
}

func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.dashboardAction(w, r, h.Service.ClockOut)
}

func (h *Handler) StartBreak(w http.ResponseWriter, r *http.Request) {
	h.dashboardAction(w, r, h.Service.StartBreak)
}

func (h *Handler) EndBreak(w http.ResponseWriter, r *http.Request) {
	h.dashboardAction(w, r, h.Service.EndBreak)
}

// dashboardAction is the shared shape of the four punch endpoints: resolve
// the actor, run the action, surface warnings without mutation.
func (h *Handler) dashboardAction(w http.ResponseWriter, r *http.Request, action func(*auth.User) (*AttendanceRecord, error)) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	rec, err := action(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto UpdateNoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.Service.UpdateNote(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	records, unread, err := h.Service.ListMine(actor, parseFilter(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"records":      records,
		"unread_count": unread,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	rec, err := h.Service.Get(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) Roster(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	date := r.URL.Query().Get("date")
	submitted := r.URL.Query().Get("submitted")

	entries, err := h.Service.Roster(actor, date, submitted)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"roster": entries})
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	records, unread, err := h.Service.ListAll(parseFilter(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"records":      records,
		"unread_count": unread,
	})
}

func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var dto CreateRecordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.Service.CreateRecord(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	var dto UpdateRecordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.Service.UpdateRecord(id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteRecord(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	rec, err := h.Service.MarkRead(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) UnmarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	rec, err := h.Service.UnmarkRead(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return actor, true
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid record ID")
		return 0, false
	}
	return id, true
}

func parseFilter(r *http.Request) Filter {
	q := r.URL.Query()

	filter := Filter{
		Query:      q.Get("q"),
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
		ReadStatus: q.Get("read_status"),
		Limit:      31,
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			filter.Limit = l
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	return filter
}
