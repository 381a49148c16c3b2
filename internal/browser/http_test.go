package browser_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"go.uber.org/zap"

	"ProductExplorer/internal/browser"
	"ProductExplorer/internal/catalog"
	"ProductExplorer/internal/favorites"
)

func catalogFixture() []catalog.Product {
	cats := []string{"electronics", "jewelery", "men's clothing", "women's clothing"}

	out := make([]catalog.Product, 0, 20)
	for id := 1; id <= 20; id++ {
		out = append(out, catalog.Product{
			ID:          id,
			Title:       fmt.Sprintf("Fixture Product %02d", id),
			Price:       float64(id) * 3.5,
			Description: fmt.Sprintf("fixture description %d", id),
			Category:    cats[(id-1)%len(cats)],
			Image:       fmt.Sprintf("https://img.example/%d.png", id),
			Rating:      catalog.Rating{Rate: float64(id%5) + 0.5, Count: id * 2},
		})
	}
	return out
}

func newUpstreamTS(t *testing.T) *httptest.Server {
	t.Helper()

	products := catalogFixture()
	mux := http.NewServeMux()

	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(products)
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		var id int
		if _, err := fmt.Sscanf(r.URL.Path, "/products/%d", &id); err == nil {
			for _, p := range products {
				if p.ID == id {
					_ = json.NewEncoder(w).Encode(p)
					return
				}
			}
		}
		http.NotFound(w, r)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newBrowserTS(t *testing.T, upstreamURL string) *httptest.Server {
	t.Helper()

	s := &browser.Server{
		Catalog:   catalog.NewClient(upstreamURL, zap.NewNop(), nil),
		Favorites: favorites.NewMemStore(),
		Log:       zap.NewNop(),
	}

	h := browser.NewHandler(s, browser.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "browser",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

// newJarClient keeps the visitor cookie across requests, like a real
// browser would.
func newJarClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

type listingPage struct {
	Items []catalog.Product `json:"items"`
	Page  int               `json:"page"`

	TotalPages     int      `json:"total_pages"`
	TotalMatched   int      `json:"total_matched"`
	TotalProducts  int      `json:"total_products"`
	Categories     []string `json:"categories"`
	FavoritesCount int      `json:"favorites_count"`
	EmptyState     string   `json:"empty_state"`
}

func getJSON(t *testing.T, c *http.Client, url string, out any, want int) {
	t.Helper()
	doJSON(t, c, http.MethodGet, url, out, want)
}

func doJSON(t *testing.T, c *http.Client, method, url string, out any, want int) {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d body=%s", method, url, resp.StatusCode, want, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode: %v body=%s", err, raw)
		}
	}
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url %q: %v", raw, err)
	}
	return u
}

func TestListing_DefaultPage(t *testing.T) {
	upstream := newUpstreamTS(t)
	ts := newBrowserTS(t, upstream.URL)
	c := newJarClient(t)

	var page listingPage
	getJSON(t, c, ts.URL+"/products", &page, 200)

	if len(page.Items) != 10 {
		t.Fatalf("items=%d want 10", len(page.Items))
	}
	if page.TotalPages != 2 || page.TotalMatched != 20 || page.TotalProducts != 20 {
		t.Fatalf("unexpected totals: %+v", page)
	}
	if len(page.Categories) != 4 {
		t.Fatalf("categories=%v", page.Categories)
	}

	// Default sort is rating descending.
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i-1].Rating.Rate < page.Items[i].Rating.Rate {
			t.Fatalf("not sorted by rating: %v then %v", page.Items[i-1].Rating, page.Items[i].Rating)
		}
	}
}

func TestListing_SearchAndCategory(t *testing.T) {
	upstream := newUpstreamTS(t)
	ts := newBrowserTS(t, upstream.URL)
	c := newJarClient(t)

	var page listingPage
	getJSON(t, c, ts.URL+"/products?search=product+07", &page, 200)
	if page.TotalMatched != 1 || page.Items[0].ID != 7 {
		t.Fatalf("search miss: %+v", page)
	}

	getJSON(t, c, ts.URL+"/products?category=electronics", &page, 200)
	if page.TotalMatched != 5 {
		t.Fatalf("category matched=%d want 5", page.TotalMatched)
	}
	for _, p := range page.Items {
		if p.Category != "electronics" {
			t.Fatalf("wrong category in page: %+v", p)
		}
	}
}

func TestListing_PageIsClampedIntoRange(t *testing.T) {
	upstream := newUpstreamTS(t)
	ts := newBrowserTS(t, upstream.URL)
	c := newJarClient(t)

	var page listingPage
	getJSON(t, c, ts.URL+"/products?page=99", &page, 200)

	if page.Page != 2 {
		t.Fatalf("page=%d want clamped to 2", page.Page)
	}
	if len(page.Items) != 10 {
		t.Fatalf("items=%d want 10", len(page.Items))
	}
}

func TestFavorites_ToggleFlow(t *testing.T) {
	upstream := newUpstreamTS(t)
	ts := newBrowserTS(t, upstream.URL)
	c := newJarClient(t)

	var toggled struct {
		ID       int  `json:"id"`
		Favorite bool `json:"favorite"`
		Count    int  `json:"count"`
	}
	doJSON(t, c, http.MethodPost, ts.URL+"/favorites/3/toggle", &toggled, 200)
	if !toggled.Favorite || toggled.Count != 1 {
		t.Fatalf("toggle 3: %+v", toggled)
	}
	doJSON(t, c, http.MethodPost, ts.URL+"/favorites/7/toggle", &toggled, 200)
	if !toggled.Favorite || toggled.Count != 2 {
		t.Fatalf("toggle 7: %+v", toggled)
	}

	var favs struct {
		IDs   []int `json:"ids"`
		Count int   `json:"count"`
	}
	getJSON(t, c, ts.URL+"/favorites", &favs, 200)
	if favs.Count != 2 || len(favs.IDs) != 2 {
		t.Fatalf("favorites: %+v", favs)
	}

	var page listingPage
	getJSON(t, c, ts.URL+"/products?favorites=only", &page, 200)
	if page.TotalMatched != 2 {
		t.Fatalf("favorites-only matched=%d want 2", page.TotalMatched)
	}
	got := map[int]bool{}
	for _, p := range page.Items {
		got[p.ID] = true
	}
	if !got[3] || !got[7] {
		t.Fatalf("favorites-only items: %v", got)
	}

	// Second toggle removes.
	doJSON(t, c, http.MethodPost, ts.URL+"/favorites/3/toggle", &toggled, 200)
	if toggled.Favorite || toggled.Count != 1 {
		t.Fatalf("untoggle 3: %+v", toggled)
	}
}

func TestFavorites_EmptyStateIsDistinct(t *testing.T) {
	upstream := newUpstreamTS(t)
	ts := newBrowserTS(t, upstream.URL)
	c := newJarClient(t)

	var page listingPage
	getJSON(t, c, ts.URL+"/products?favorites=only", &page, 200)
	if page.EmptyState != "no_favorites" {
		t.Fatalf("empty_state=%q want no_favorites", page.EmptyState)
	}

	getJSON(t, c, ts.URL+"/products?search=zzzzzz", &page, 200)
	if page.EmptyState != "no_results" {
		t.Fatalf("empty_state=%q want no_results", page.EmptyState)
	}

	getJSON(t, c, ts.URL+"/products", &page, 200)
	if page.EmptyState != "" {
		t.Fatalf("empty_state=%q want empty", page.EmptyState)
	}
}

func TestDetail_FoundAndFavoriteFlag(t *testing.T) {
	upstream := newUpstreamTS(t)
	ts := newBrowserTS(t, upstream.URL)
	c := newJarClient(t)

	var detail struct {
		Product  catalog.Product `json:"product"`
		Favorite bool            `json:"favorite"`
	}
	getJSON(t, c, ts.URL+"/products/7", &detail, 200)
	if detail.Product.ID != 7 || detail.Favorite {
		t.Fatalf("detail: %+v", detail)
	}

	doJSON(t, c, http.MethodPost, ts.URL+"/favorites/7/toggle", nil, 200)
	getJSON(t, c, ts.URL+"/products/7", &detail, 200)
	if !detail.Favorite {
		t.Fatalf("favorite flag not set after toggle")
	}
}

func TestDetail_NotFound(t *testing.T) {
	upstream := newUpstreamTS(t)
	ts := newBrowserTS(t, upstream.URL)
	c := newJarClient(t)

	getJSON(t, c, ts.URL+"/products/999", nil, 404)
	getJSON(t, c, ts.URL+"/products/notanid", nil, 404)
}

func TestListing_FallbackWhenUpstreamDown(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	ts := newBrowserTS(t, deadURL)
	c := newJarClient(t)

	var page listingPage
	getJSON(t, c, ts.URL+"/products", &page, 200)

	if page.TotalProducts != catalog.MockCount {
		t.Fatalf("total_products=%d want %d", page.TotalProducts, catalog.MockCount)
	}
	if len(page.Items) == 0 {
		t.Fatalf("expected non-empty fallback page")
	}
}

func TestCart_Stub(t *testing.T) {
	upstream := newUpstreamTS(t)
	ts := newBrowserTS(t, upstream.URL)
	c := newJarClient(t)

	var resp struct {
		Status string `json:"status"`
	}
	doJSON(t, c, http.MethodPost, ts.URL+"/cart", &resp, 202)
	if resp.Status != "accepted" {
		t.Fatalf("cart stub: %+v", resp)
	}
}

func TestVisitorCookieIssuedOnce(t *testing.T) {
	upstream := newUpstreamTS(t)
	ts := newBrowserTS(t, upstream.URL)
	c := newJarClient(t)

	resp, err := c.Get(ts.URL + "/products")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()

	var visitor string
	for _, ck := range c.Jar.Cookies(mustParseURL(t, ts.URL)) {
		if ck.Name == "visitor_id" {
			visitor = ck.Value
		}
	}
	if visitor == "" {
		t.Fatalf("visitor cookie not set")
	}

	// Second request keeps the same identity: no fresh Set-Cookie.
	resp, err = c.Get(ts.URL + "/products")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	for _, ck := range resp.Cookies() {
		if ck.Name == "visitor_id" {
			t.Fatalf("visitor cookie re-issued")
		}
	}
}
