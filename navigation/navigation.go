// Package navigation maps the catalog's views to route paths and back.
package navigation

import (
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ViewName identifies one of the catalog views.
type ViewName string

const (
	ViewList   ViewName = "list"
	ViewCreate ViewName = "create"
	ViewEdit   ViewName = "edit"
)

// View is a navigation target. ID is set for ViewEdit only.
type View struct {
	Name ViewName
	ID   string
}

func List() View { return View{Name: ViewList} }

func Create() View { return View{Name: ViewCreate} }

func Edit(id string) View { return View{Name: ViewEdit, ID: id} }

// Path returns the route path of v.
func (v View) Path() string {
	switch v.Name {
	case ViewCreate:
		return "/add"
	case ViewEdit:
		return "/edit/" + url.PathEscape(v.ID)
	}
	return "/"
}

func (v View) String() string {
	return string(v.Name) + " " + v.Path()
}

const (
	patternList   = "/"
	patternCreate = "/add"
	patternEdit   = "/edit/{id}"
)

var routes = newRouteTable()

func newRouteTable() *chi.Mux {
	r := chi.NewRouter()
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	r.Get(patternList, noop)
	r.Get(patternCreate, noop)
	r.Get(patternEdit, noop)
	return r
}

// Resolve maps a route path to its view. Unknown routes resolve to the list.
func Resolve(path string) View {
	path, _, _ = strings.Cut(path, "?")
	if path == "" {
		path = "/"
	}

	rctx := chi.NewRouteContext()
	if !routes.Match(rctx, http.MethodGet, path) {
		return List()
	}

	switch rctx.RoutePattern() {
	case patternCreate:
		return Create()
	case patternEdit:
		id, err := url.PathUnescape(rctx.URLParam("id"))
		if err != nil || id == "" {
			return List()
		}
		return Edit(id)
	}
	return List()
}

// Navigator moves the client to another view.
type Navigator interface {
	Navigate(v View)
}

// History is a Navigator that records every view it is sent to.
type History struct {
	mu     sync.Mutex
	views  []View
	logger zerolog.Logger
}

// NewHistory creates a History positioned on the list view.
func NewHistory(logger zerolog.Logger) *History {
	return &History{
		views:  []View{List()},
		logger: logger.With().Str("component", "navigation").Logger(),
	}
}

func (h *History) Navigate(v View) {
	h.mu.Lock()
	h.views = append(h.views, v)
	h.mu.Unlock()

	h.logger.Debug().Str("view", string(v.Name)).Str("path", v.Path()).Msg("navigate")
}

// Current returns the most recent view.
func (h *History) Current() View {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.views[len(h.views)-1]
}

// Views returns every view visited, oldest first.
func (h *History) Views() []View {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]View(nil), h.views...)
}
