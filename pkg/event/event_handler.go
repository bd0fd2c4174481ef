package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/daybook/daybook/internal/rest"
	"github.com/gorilla/mux"
	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"
)

type EventDTO struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Start         time.Time         `json:"start"`
	End           time.Time         `json:"end"`
	AllDay        bool              `json:"allDay"`
	EventType     string            `json:"eventType,omitempty"`
	Priority      *string           `json:"priority,omitempty"`
	Fixed         bool              `json:"fixed,omitempty"`
	Done          bool              `json:"done,omitempty"`
	Content       *string           `json:"content,omitempty"`
	Notifications []NotificationDTO `json:"notifications,omitempty"`
	SourceHabitID *string           `json:"sourceHabitId,omitempty"`
}

type NotificationDTO struct {
	ID         string `json:"id"`
	TimeBefore int    `json:"timeBefore"`
	TimeUnit   string `json:"timeUnit"`
}

type EventHandler struct {
	service Service
}

func NewEventHandler(service Service) *EventHandler {
	return &EventHandler{service}
}

func (handler *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new event")
	w.Header().Set("Content-Type", "application/json")

	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}

	created, err := handler.service.Create(r.Context(), DTOToEvent(eventDTO))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(EventToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *EventHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from timestamp, expected RFC 3339")
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to timestamp, expected RFC 3339")
		return
	}

	events, err := handler.service.FindInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	eventsDTO := make([]EventDTO, 0, len(events))
	for _, event := range events {
		eventsDTO = append(eventsDTO, EventToDTO(event))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	event, err := handler.service.Get(r.Context(), vars["id"])
	if errors.Is(err, ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(EventToDTO(event)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if eventDTO.ID == "" || eventDTO.ID != vars["id"] {
		writeError(w, http.StatusBadRequest, "Invalid event id in request body")
		return
	}

	updated, err := handler.service.Update(r.Context(), DTOToEvent(eventDTO))
	if errors.Is(err, ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(EventToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	err := handler.service.Delete(r.Context(), vars["id"])
	if errors.Is(err, ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error: message,
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

func EventToDTO(event Event) EventDTO {
	notifications := make([]NotificationDTO, 0, len(event.Notifications))
	for _, n := range event.Notifications {
		notifications = append(notifications, NotificationDTO(n))
	}
	return EventDTO{
		ID:            event.ID,
		Title:         event.Title,
		Start:         event.Start,
		End:           event.End,
		AllDay:        event.AllDay,
		EventType:     event.EventType,
		Priority:      event.Priority.ToPointer(),
		Fixed:         event.Fixed,
		Done:          event.Done,
		Content:       event.Content.ToPointer(),
		Notifications: notifications,
		SourceHabitID: event.SourceHabitID.ToPointer(),
	}
}

func DTOToEvent(eventDTO EventDTO) Event {
	notifications := make([]Notification, 0, len(eventDTO.Notifications))
	for _, n := range eventDTO.Notifications {
		notifications = append(notifications, Notification(n))
	}
	return Event{
		ID:            eventDTO.ID,
		Title:         eventDTO.Title,
		Start:         eventDTO.Start,
		End:           eventDTO.End,
		AllDay:        eventDTO.AllDay,
		EventType:     eventDTO.EventType,
		Priority:      mo.PointerToOption(eventDTO.Priority),
		Fixed:         eventDTO.Fixed,
		Done:          eventDTO.Done,
		Content:       mo.PointerToOption(eventDTO.Content),
		Notifications: notifications,
		SourceHabitID: mo.PointerToOption(eventDTO.SourceHabitID),
	}
}
