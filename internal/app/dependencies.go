package app

import (
	"github.com/daybook/daybook/internal/config"
	"github.com/daybook/daybook/internal/event_bus"
	"github.com/daybook/daybook/internal/utils"
	"github.com/daybook/daybook/pkg/assistant"
	"github.com/daybook/daybook/pkg/event"
	"github.com/daybook/daybook/pkg/feed"
	"github.com/daybook/daybook/pkg/google"
	"github.com/daybook/daybook/pkg/habit"
	"github.com/daybook/daybook/pkg/notifier"
	"github.com/daybook/daybook/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	UserRepo    user.Repo
	UserService user.Service
	UserHandler *user.Handler

	HabitService *habit.ServiceImpl
	HabitHandler *habit.HabitHandler

	EventService *event.ServiceImpl
	EventHandler *event.EventHandler

	AssistantService *assistant.ServiceImpl
	AssistantHandler *assistant.Handler

	FeedService *feed.ServiceImpl
	FeedHandler *feed.Handler

	NotifierService *notifier.ServiceImpl

	GoogleAuth    *google.GoogleAuth
	GoogleService google.Service
	GoogleHandler *google.Handler
	GoogleMirror  *google.Mirror
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.UserRepo = user.NewUserRepo(db)
	deps.UserService = user.NewUserService(deps.UserRepo)
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.HabitService = habit.NewService(habit.NewRepository(db), deps.EventBus)
	deps.HabitHandler = habit.NewHabitHandler(deps.HabitService)

	deps.EventService = event.NewService(event.NewRepository(db), deps.EventBus)
	deps.EventHandler = event.NewEventHandler(deps.EventService)

	deps.AssistantService = assistant.NewService(deps.HabitService, deps.EventService, deps.Clock)
	deps.AssistantHandler = assistant.NewHandler(deps.AssistantService)

	deps.FeedService = feed.NewService(deps.HabitService, deps.EventService, deps.Clock)
	deps.FeedHandler = feed.NewHandler(deps.FeedService)

	deps.NotifierService = notifier.NewService(deps.UserRepo, deps.HabitService, deps.EventService, notifier.LogSender{}, deps.Clock)

	deps.GoogleAuth = google.NewGoogleAuth(db, deps.UserService, cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)
	deps.GoogleMirror = google.NewMirror(deps.GoogleService, google.NewLinkRepo(db))
	deps.GoogleMirror.Register(deps.EventBus)

	return deps
}
