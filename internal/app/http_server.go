package app

import (
	"encoding/json"
	"net/http"

	"github.com/frudas24/touchsampler/internal/action"
	"github.com/frudas24/touchsampler/internal/calib"
	"github.com/frudas24/touchsampler/internal/live"
	"github.com/frudas24/touchsampler/internal/session"
	"github.com/frudas24/touchsampler/internal/web"
)

// RegisterRoutes wires the API and stream handlers onto the mux.
func (a *App) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", a.handleState)
	mux.HandleFunc("/api/catalog", a.handleCatalog)
	mux.HandleFunc("/api/touches", a.handleTouches)
	mux.Handle("/ws/ticks", a.hub)
	if a.stream != nil {
		mux.Handle("/mjpeg/overlay", a.stream)
	}
	mux.HandleFunc("/favicon.ico", handleFavicon)
	if static, err := web.Handler(); err != nil {
		a.log.WithError(err).Warn("app: debug page unavailable")
	} else {
		mux.Handle("/", static)
	}
}

type stateResponse struct {
	session.Snapshot
	LiveClients int `json:"live_clients"`
}

type catalogEntry struct {
	ID        int         `json:"id"`
	Type      string      `json:"type"`
	Region    *calib.Rect `json:"region,omitempty"`
	Name      string      `json:"name,omitempty"`
	SubAction *int        `json:"sub_action,omitempty"`
	Wedges    int         `json:"wedges,omitempty"`
}

type skippedEntry struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Error string `json:"error"`
}

type catalogResponse struct {
	Ratio   float64        `json:"ratio"`
	NoneID  int            `json:"none_id"`
	Actions []catalogEntry `json:"actions"`
	Skipped []skippedEntry `json:"skipped"`
}

// handleState returns the session snapshot.
func (a *App) handleState(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, stateResponse{
		Snapshot:    a.session.Snapshot(),
		LiveClients: a.hub.Clients(),
	})
}

// handleCatalog describes the calibrated actions.
func (a *App) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	cat := a.Catalog()
	if cat == nil {
		http.Error(w, "catalog not loaded", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, describeCatalog(cat))
}

// handleTouches returns the current slot table.
func (a *App) handleTouches(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	d := a.Decoder()
	if d == nil {
		http.Error(w, "decoder not running", http.StatusServiceUnavailable)
		return
	}
	f := d.Snapshot()
	msg := live.Message{Type: "touches", Seq: f.Seq, Touches: []live.Touch{}}
	for slot, p := range f.Slots {
		if p == nil || !p.HasPos() {
			continue
		}
		msg.Touches = append(msg.Touches, live.Touch{Slot: slot, ID: p.TrackingID, X: p.X, Y: p.Y})
	}
	writeJSON(w, msg)
}

// describeCatalog flattens a catalog for JSON.
func describeCatalog(cat *action.Catalog) catalogResponse {
	resp := catalogResponse{
		Ratio:   cat.Ratio(),
		NoneID:  cat.NoneID(),
		Actions: []catalogEntry{},
		Skipped: []skippedEntry{},
	}
	for _, id := range cat.IDs() {
		ctx, _ := cat.Get(id)
		e := catalogEntry{ID: id, Type: ctx.Kind().String()}
		if r, ok := action.Bounds(ctx); ok {
			e.Region = &r
		}
		if j, ok := ctx.(*action.JoyStick); ok {
			sub := j.SubAction
			e.Name = j.Name
			e.SubAction = &sub
			e.Wedges = j.Wedges
		}
		resp.Actions = append(resp.Actions, e)
	}
	for _, s := range cat.Skipped() {
		resp.Skipped = append(resp.Skipped, skippedEntry{ID: s.ID, Type: s.Type.String(), Error: s.Err.Error()})
	}
	return resp
}

// allowGet rejects non-GET requests.
func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// handleFavicon avoids noisy 404s for the default browser request.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
