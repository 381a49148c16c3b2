package browser

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ProductExplorer/internal/catalog"
	"ProductExplorer/internal/favorites"
	"ProductExplorer/internal/listing"
	"ProductExplorer/pkg/kit"
)

const (
	emptyNoResults   = "no_results"
	emptyNoFavorites = "no_favorites"
)

type Server struct {
	Catalog   *catalog.Client
	Favorites favorites.Store
	Log       *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Favorites.Ping(ctx); err != nil {
			if s.Log != nil {
				s.Log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(EnsureVisitor)
		pr.Get("/products", s.list)
		pr.Get("/products/{id}", s.detail)
		pr.Get("/favorites", s.listFavorites)
		pr.Post("/favorites/{id}/toggle", s.toggleFavorite)
		pr.Post("/cart", s.addToCart)
	})

	return r
}

type queryEcho struct {
	Search        string `json:"search"`
	Category      string `json:"category"`
	Sort          string `json:"sort"`
	View          string `json:"view"`
	Page          int    `json:"page"`
	FavoritesOnly bool   `json:"favorites_only"`
}

type listingPage struct {
	Items          []catalog.Product `json:"items"`
	Page           int               `json:"page"`
	TotalPages     int               `json:"total_pages"`
	TotalMatched   int               `json:"total_matched"`
	TotalProducts  int               `json:"total_products"`
	Categories     []string          `json:"categories"`
	Query          queryEcho         `json:"query"`
	FavoritesCount int               `json:"favorites_count"`
	EmptyState     string            `json:"empty_state,omitempty"`
}

type detailPage struct {
	Product  catalog.Product `json:"product"`
	Favorite bool            `json:"favorite"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	state := stateFromRequest(r)

	products := s.Catalog.Products(r.Context())
	ids := s.loadFavorites(r)
	favSet := favorites.Set(ids)

	res := listing.Derive(products, state.Query(favSet, listing.DefaultPageSize))

	requested := state.Page
	state.ClampPage(res.TotalPages)
	if state.Page != requested {
		res = listing.Derive(products, state.Query(favSet, listing.DefaultPageSize))
	}

	empty := ""
	if res.TotalMatched == 0 {
		empty = emptyNoResults
		if state.FavoritesOnly && len(ids) == 0 {
			empty = emptyNoFavorites
		}
	}

	items := res.PageItems
	if items == nil {
		items = []catalog.Product{}
	}

	kit.WriteJSON(w, http.StatusOK, listingPage{
		Items:         items,
		Page:          state.Page,
		TotalPages:    res.TotalPages,
		TotalMatched:  res.TotalMatched,
		TotalProducts: len(products),
		Categories:    listing.Categories(products),
		Query: queryEcho{
			Search:        state.Search,
			Category:      state.Category,
			Sort:          string(state.Sort),
			View:          string(state.View),
			Page:          state.Page,
			FavoritesOnly: state.FavoritesOnly,
		},
		FavoritesCount: len(ids),
		EmptyState:     empty,
	})
}

func (s *Server) detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": chi.URLParam(r, "id")})
		return
	}

	p, err := s.Catalog.Product(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	if err != nil {
		if s.Log != nil {
			s.Log.Error("get product failed", zap.Error(err), zap.Int("product_id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	fav, err := s.Favorites.IsFavorite(r.Context(), visitorID(r), id)
	if err != nil {
		if s.Log != nil {
			s.Log.Warn("favorite lookup failed", zap.Error(err), zap.Int("product_id", id))
		}
		fav = false
	}

	kit.WriteJSON(w, http.StatusOK, detailPage{Product: p, Favorite: fav})
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Favorites.Load(r.Context(), visitorID(r))
	if err != nil {
		if s.Log != nil {
			s.Log.Error("load favorites failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if ids == nil {
		ids = []int{}
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"ids":   ids,
		"count": len(ids),
	})
}

func (s *Server) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", map[string]any{"id": chi.URLParam(r, "id")})
		return
	}

	visitor := visitorID(r)
	fav, err := s.Favorites.Toggle(r.Context(), visitor, id)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("toggle favorite failed", zap.Error(err), zap.Int("product_id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	ids, err := s.Favorites.Load(r.Context(), visitor)
	if err != nil {
		ids = nil
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"id":       id,
		"favorite": fav,
		"count":    len(ids),
	})
}

// addToCart is a stub: checkout is out of scope, but the route exists
// so clients have a stable surface to wire against.
func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusAccepted, map[string]any{
		"status": "accepted",
		"note":   "checkout is not implemented",
	})
}

// loadFavorites degrades to an empty set on store failure: the listing
// always renders.
func (s *Server) loadFavorites(r *http.Request) []int {
	ids, err := s.Favorites.Load(r.Context(), visitorID(r))
	if err != nil {
		if s.Log != nil {
			s.Log.Warn("load favorites failed, treating as empty", zap.Error(err))
		}
		return nil
	}
	return ids
}

func visitorID(r *http.Request) string {
	v, _ := VisitorFromContext(r.Context())
	return v
}

func stateFromRequest(r *http.Request) listing.ViewState {
	state := listing.NewViewState()
	q := r.URL.Query()

	state.SetSearch(q.Get("search"))
	state.SetCategory(q.Get("category"))

	if sort, ok := listing.ParseSort(q.Get("sort")); ok {
		state.SetSort(sort)
	}
	if view, ok := listing.ParseViewMode(q.Get("view")); ok {
		state.SetView(view)
	}
	if q.Get("favorites") == "only" {
		state.SetFavoritesOnly(true)
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		state.SetPage(page)
	}

	return state
}
