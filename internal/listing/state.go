package listing

type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

func ParseViewMode(s string) (ViewMode, bool) {
	switch ViewMode(s) {
	case ViewGrid, ViewList:
		return ViewMode(s), true
	}
	return "", false
}

// ViewState is the ephemeral browsing state, threaded explicitly
// through event handlers instead of living in ambient UI state.
type ViewState struct {
	Search           string
	Category         string
	Sort             Sort
	View             ViewMode
	Page             int
	FavoritesOnly    bool
	FilterDrawerOpen bool
}

func NewViewState() ViewState {
	return ViewState{
		Sort: SortRating,
		View: ViewGrid,
		Page: 1,
	}
}

func (s *ViewState) SetSearch(q string)   { s.Search = q; s.Page = 1 }
func (s *ViewState) SetCategory(c string) { s.Category = c; s.Page = 1 }
func (s *ViewState) SetSort(k Sort)       { s.Sort = k }
func (s *ViewState) SetView(v ViewMode)   { s.View = v }
func (s *ViewState) SetPage(p int)        { s.Page = p }
func (s *ViewState) ToggleFilterDrawer()  { s.FilterDrawerOpen = !s.FilterDrawerOpen }
func (s *ViewState) ToggleFavoritesOnly() { s.FavoritesOnly = !s.FavoritesOnly; s.Page = 1 }
func (s *ViewState) SetFavoritesOnly(v bool) {
	s.FavoritesOnly = v
	s.Page = 1
}

// ClampPage pulls the current page back into [1, totalPages] after the
// matched set changed size. An empty result pins the page to 1.
func (s *ViewState) ClampPage(totalPages int) {
	if totalPages < 1 {
		s.Page = 1
		return
	}
	if s.Page < 1 {
		s.Page = 1
	}
	if s.Page > totalPages {
		s.Page = totalPages
	}
}

// Query builds the derivation input for this state against the given
// favorites set.
func (s ViewState) Query(favorites map[int]struct{}, pageSize int) Query {
	return Query{
		Search:        s.Search,
		Category:      s.Category,
		FavoritesOnly: s.FavoritesOnly,
		Favorites:     favorites,
		Sort:          s.Sort,
		Page:          s.Page,
		PageSize:      pageSize,
	}
}
