package proxy

import (
	"net/http"

	"github.com/mandalnilabja/vecway/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/vecway/internal/types"
)

// ListModels handles GET /v1/models, listing every caller-facing alias.
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, h.Formatter.ModelList(h.Router.Aliases()), http.StatusOK)
}

// GetModel handles GET /v1/models/{model}.
func (h *Handlers) GetModel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("model")
	if _, err := h.Router.Resolve(id); err != nil {
		types.WriteError(w, http.StatusNotFound,
			types.ErrNotFound("The model '"+id+"' does not exist"))
		return
	}
	shared.WriteJSON(w, h.Formatter.Model(id, h.Formatter.Now()), http.StatusOK)
}
