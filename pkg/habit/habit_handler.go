package habit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/daybook/daybook/internal/rest"
	"github.com/daybook/daybook/pkg/recurrence"
	"github.com/gorilla/mux"
	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"
)

type HabitDTO struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	CreationDate   string            `json:"creationDate"`
	Frequency      string            `json:"frequency"`
	Days           []string          `json:"days,omitempty"`
	ExceptionDates []string          `json:"exceptionDates,omitempty"`
	StopDate       *string           `json:"stopDate,omitempty"`
	StartTime      string            `json:"startTime"`
	Timezone       string            `json:"timezone"`
	LengthMinutes  int               `json:"lengthMinutes"`
	AllDay         bool              `json:"allDay"`
	EventType      string            `json:"eventType,omitempty"`
	Priority       *string           `json:"priority,omitempty"`
	Fixed          bool              `json:"fixed,omitempty"`
	Content        *string           `json:"content,omitempty"`
	Notifications  []NotificationDTO `json:"notifications,omitempty"`
	PrevVersionID  *string           `json:"prevVersionId,omitempty"`
}

type NotificationDTO struct {
	ID         string `json:"id"`
	TimeBefore int    `json:"timeBefore"`
	TimeUnit   string `json:"timeUnit"`
}

type OccurrenceDTO struct {
	HabitID string    `json:"habitId"`
	Title   string    `json:"title"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	AllDay  bool      `json:"allDay"`
}

type HabitHandler struct {
	service Service
}

func NewHabitHandler(service Service) *HabitHandler {
	return &HabitHandler{service}
}

func (handler *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new habit")
	w.Header().Set("Content-Type", "application/json")

	var habitDTO HabitDTO
	if err := json.NewDecoder(r.Body).Decode(&habitDTO); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	habit, err := DTOToHabit(habitDTO)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := handler.service.Create(r.Context(), habit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(HabitToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *HabitHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	habits, err := handler.service.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	habitsDTO := make([]HabitDTO, 0, len(habits))
	for _, habit := range habits {
		habitsDTO = append(habitsDTO, HabitToDTO(habit))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(habitsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	habit, err := handler.service.Get(r.Context(), vars["id"])
	if errors.Is(err, ErrHabitNotFound) {
		writeError(w, http.StatusNotFound, "Habit not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(HabitToDTO(habit)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	var habitDTO HabitDTO
	if err := json.NewDecoder(r.Body).Decode(&habitDTO); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if habitDTO.ID == "" || habitDTO.ID != vars["id"] {
		writeError(w, http.StatusBadRequest, "Invalid habit id in request body")
		return
	}
	habit, err := DTOToHabit(habitDTO)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := handler.service.Update(r.Context(), habit)
	if errors.Is(err, ErrHabitNotFound) {
		writeError(w, http.StatusNotFound, "Habit not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(HabitToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	err := handler.service.Delete(r.Context(), vars["id"])
	if errors.Is(err, ErrHabitNotFound) {
		writeError(w, http.StatusNotFound, "Habit not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (handler *HabitHandler) Occurrences(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	from, err := recurrence.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
		return
	}
	to, err := recurrence.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
		return
	}

	occurrences, err := handler.service.OccurrencesBetween(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	occurrencesDTO := make([]OccurrenceDTO, 0, len(occurrences))
	for _, occurrence := range occurrences {
		occurrencesDTO = append(occurrencesDTO, OccurrenceDTO(occurrence))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(occurrencesDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
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

func HabitToDTO(habit Habit) HabitDTO {
	exceptionDates := make([]string, 0, len(habit.Schedule.ExceptionDates))
	for _, d := range habit.Schedule.ExceptionDates {
		exceptionDates = append(exceptionDates, d.String())
	}
	var stopDate *string
	if d, ok := habit.Schedule.StopDate.Get(); ok {
		s := d.String()
		stopDate = &s
	}
	notifications := make([]NotificationDTO, 0, len(habit.Notifications))
	for _, n := range habit.Notifications {
		notifications = append(notifications, NotificationDTO(n))
	}
	return HabitDTO{
		ID:             habit.ID,
		Name:           habit.Name,
		CreationDate:   habit.Schedule.CreationDate.String(),
		Frequency:      habit.Schedule.Frequency.String(),
		Days:           habit.Schedule.Days,
		ExceptionDates: exceptionDates,
		StopDate:       stopDate,
		StartTime:      fmt.Sprintf("%02d:%02d", habit.StartTime.Hour, habit.StartTime.Minute),
		Timezone:       habit.StartTime.Timezone,
		LengthMinutes:  habit.Length,
		AllDay:         habit.AllDay,
		EventType:      habit.EventType,
		Priority:       habit.Priority.ToPointer(),
		Fixed:          habit.Fixed,
		Content:        habit.Content.ToPointer(),
		Notifications:  notifications,
		PrevVersionID:  habit.PrevVersionID.ToPointer(),
	}
}

func DTOToHabit(habitDTO HabitDTO) (Habit, error) {
	creationDate, err := recurrence.ParseDate(habitDTO.CreationDate)
	if err != nil {
		return Habit{}, errors.New("invalid creation date, expected YYYY-MM-DD")
	}
	frequency, err := recurrence.ParseFrequency(habitDTO.Frequency)
	if err != nil {
		return Habit{}, err
	}
	exceptionDates := make([]recurrence.Date, 0, len(habitDTO.ExceptionDates))
	for _, s := range habitDTO.ExceptionDates {
		d, err := recurrence.ParseDate(s)
		if err != nil {
			return Habit{}, fmt.Errorf("invalid exception date %q, expected YYYY-MM-DD", s)
		}
		exceptionDates = append(exceptionDates, d)
	}
	stopDate := mo.None[recurrence.Date]()
	if habitDTO.StopDate != nil {
		d, err := recurrence.ParseDate(*habitDTO.StopDate)
		if err != nil {
			return Habit{}, errors.New("invalid stop date, expected YYYY-MM-DD")
		}
		stopDate = mo.Some(d)
	}
	startTime, err := time.Parse("15:04", habitDTO.StartTime)
	if err != nil {
		return Habit{}, errors.New("invalid start time, expected HH:MM")
	}
	notifications := make([]Notification, 0, len(habitDTO.Notifications))
	for _, n := range habitDTO.Notifications {
		notifications = append(notifications, Notification(n))
	}
	return Habit{
		ID:   habitDTO.ID,
		Name: habitDTO.Name,
		Schedule: recurrence.Schedule{
			CreationDate:   creationDate,
			Frequency:      frequency,
			Days:           habitDTO.Days,
			ExceptionDates: exceptionDates,
			StopDate:       stopDate,
		},
		StartTime: StartTime{
			Hour:     startTime.Hour(),
			Minute:   startTime.Minute(),
			Timezone: habitDTO.Timezone,
		},
		Length:        habitDTO.LengthMinutes,
		AllDay:        habitDTO.AllDay,
		EventType:     habitDTO.EventType,
		Priority:      mo.PointerToOption(habitDTO.Priority),
		Fixed:         habitDTO.Fixed,
		Content:       mo.PointerToOption(habitDTO.Content),
		Notifications: notifications,
		PrevVersionID: mo.PointerToOption(habitDTO.PrevVersionID),
	}, nil
}
