// internal/adapters/in/http/mall/handler/location_handler.go
package mallHandler

import (
	"errors"
	"net/http"
	"strings"

	locationdom "modaorganica/internal/domain/location"
)

// LocationHandler serves:
// - GET /api/v1/locations           departments
// - GET /api/v1/locations/{deptId}  municipalities of one department (id or name)
type LocationHandler struct {
	locs *locationdom.Catalogue
}

func NewLocationHandler(locs *locationdom.Catalogue) http.Handler {
	return &LocationHandler{locs: locs}
}

func (h *LocationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.locs == nil {
		writeErr(w, http.StatusInternalServerError, "location catalogue is not configured")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	rest := trimPrefixPath(r.URL.Path, "/api/v1/locations")
	if rest == "" {
		writeJSON(w, http.StatusOK, h.locs.Departments())
		return
	}
	if strings.Contains(rest, "/") {
		notFound(w)
		return
	}

	munis, err := h.locs.Municipalities(rest)
	if errors.Is(err, locationdom.ErrUnknownDepartment) {
		writeErr(w, http.StatusNotFound, "department not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, munis)
}
