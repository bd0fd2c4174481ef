package assistant

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/daybook/daybook/internal/rest"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (handler *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	log.Debug("Assistant create event request")
	runTool(w, r, handler.service.CreateEvent)
}

func (handler *Handler) ReadEvents(w http.ResponseWriter, r *http.Request) {
	log.Debug("Assistant read events request")
	runTool(w, r, handler.service.ReadEvents)
}

func (handler *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	log.Debug("Assistant update event request")
	runTool(w, r, handler.service.UpdateEvent)
}

func (handler *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	log.Debug("Assistant delete event request")
	runTool(w, r, handler.service.DeleteEvent)
}

// runTool decodes the tool input, invokes the tool, and writes its Result.
// Tool replies, clarification questions included, are always 200; only
// infrastructure failures become 500s.
func runTool[T any](w http.ResponseWriter, r *http.Request, tool func(ctx context.Context, input T) (Result, error)) {
	w.Header().Set("Content-Type", "application/json")

	var input T
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	result, err := tool(r.Context(), input)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: err.Error(),
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
