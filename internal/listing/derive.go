package listing

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"ProductExplorer/internal/catalog"
)

const DefaultPageSize = 10

type Sort string

const (
	SortPriceAsc  Sort = "price-asc"
	SortPriceDesc Sort = "price-desc"
	SortRating    Sort = "rating"
	SortName      Sort = "name"
)

func ParseSort(s string) (Sort, bool) {
	switch Sort(s) {
	case SortPriceAsc, SortPriceDesc, SortRating, SortName:
		return Sort(s), true
	}
	return "", false
}

// Query is the full input to one derivation: the active filters, the
// favorites set they are evaluated against, and the page window.
type Query struct {
	Search        string
	Category      string
	FavoritesOnly bool
	Favorites     map[int]struct{}
	Sort          Sort
	Page          int
	PageSize      int
}

type Result struct {
	PageItems    []catalog.Product
	TotalPages   int
	TotalMatched int
}

// Derive applies text filter, category filter, favorites filter, a
// stable sort and the page slice, in that order. It never mutates
// products. The page is taken as given: an out-of-range page yields an
// empty slice and clamping stays with the caller.
func Derive(products []catalog.Product, q Query) Result {
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}

	matched := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if !matchesSearch(p, q.Search) {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.FavoritesOnly {
			if _, ok := q.Favorites[p.ID]; !ok {
				continue
			}
		}
		matched = append(matched, p)
	}

	sortProducts(matched, q.Sort)

	totalPages := (len(matched) + q.PageSize - 1) / q.PageSize

	start := (q.Page - 1) * q.PageSize
	end := start + q.PageSize
	if start < 0 || start >= len(matched) {
		return Result{PageItems: nil, TotalPages: totalPages, TotalMatched: len(matched)}
	}
	if end > len(matched) {
		end = len(matched)
	}

	return Result{
		PageItems:    matched[start:end],
		TotalPages:   totalPages,
		TotalMatched: len(matched),
	}
}

func matchesSearch(p catalog.Product, search string) bool {
	if search == "" {
		return true
	}
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Title), s) ||
		strings.Contains(strings.ToLower(p.Description), s)
}

func sortProducts(products []catalog.Product, key Sort) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating.Rate > products[j].Rating.Rate
		})
	case SortName:
		c := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(products, func(i, j int) bool {
			return c.CompareString(products[i].Title, products[j].Title) < 0
		})
	}
}

// Categories lists the distinct categories of the collection in
// first-seen order. The set is open: whatever the loaded data carries.
func Categories(products []catalog.Product) []string {
	seen := make(map[string]struct{}, 8)
	out := make([]string, 0, 8)
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
