package ratingprompt

import (
	"net/http"

	"hampr/utils"

	"github.com/julienschmidt/httprouter"
)

type Handlers struct {
	Pipeline *Pipeline
}

func NewHandlers(p *Pipeline) *Handlers {
	return &Handlers{Pipeline: p}
}

// GetState reports the viewer's prompt slot and queue depth.
func (h *Handlers) GetState(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"current": h.Pipeline.Current(userID),
		"queued":  h.Pipeline.QueueLen(userID),
	})
}

// ClosePrompt clears the displayed prompt (submitted or dismissed alike) and
// lets the next queued id promote.
func (h *Handlers) ClosePrompt(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.Pipeline.ClosePrompt(userID)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"current": h.Pipeline.Current(userID)})
}
