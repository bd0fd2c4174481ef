package app

import (
	"github.com/daybook/daybook/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// User management
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")

	// Habits (recurring event configurations)
	r.HandleFunc("/api/habit", deps.HabitHandler.Create).Methods("POST")
	r.HandleFunc("/api/habit", deps.HabitHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/habit/occurrences", deps.HabitHandler.Occurrences).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/habit/{habitId}", deps.HabitHandler.Get).Methods("GET")
	r.HandleFunc("/api/habit/{habitId}", deps.HabitHandler.Update).Methods("PUT")
	r.HandleFunc("/api/habit/{habitId}", deps.HabitHandler.Delete).Methods("DELETE")

	// Standalone events
	r.HandleFunc("/api/event", deps.EventHandler.Create).Methods("POST")
	r.HandleFunc("/api/event", deps.EventHandler.GetAll).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.Get).Methods("GET")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.Update).Methods("PUT")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.Delete).Methods("DELETE")

	// Assistant tools
	r.HandleFunc("/api/assistant/create-event", deps.AssistantHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/assistant/read-events", deps.AssistantHandler.ReadEvents).Methods("POST")
	r.HandleFunc("/api/assistant/update-event", deps.AssistantHandler.UpdateEvent).Methods("POST")
	r.HandleFunc("/api/assistant/delete-event", deps.AssistantHandler.DeleteEvent).Methods("POST")

	// Calendar feed
	r.HandleFunc("/api/calendar.ics", deps.FeedHandler.GetCalendar).Methods("GET")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")
}
