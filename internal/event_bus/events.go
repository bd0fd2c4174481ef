package event_bus

// Event types published by the calendar services. Payloads are the domain
// structs of the publishing package.
const (
	EventCreated EventType = "event.created"
	EventUpdated EventType = "event.updated"
	EventDeleted EventType = "event.deleted"
	HabitCreated EventType = "habit.created"
	HabitUpdated EventType = "habit.updated"
	HabitDeleted EventType = "habit.deleted"
)
