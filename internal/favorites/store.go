package favorites

import "context"

// Store keeps the set of favorited product ids. Toggle must persist
// before it returns: the persisted set and the in-memory set are never
// allowed to diverge between calls.
//
// The visitor id scopes the set in shared backends. The file store
// holds a single local profile and ignores it.
type Store interface {
	Load(ctx context.Context, visitor string) ([]int, error)
	Toggle(ctx context.Context, visitor string, id int) (bool, error)
	IsFavorite(ctx context.Context, visitor string, id int) (bool, error)
	Ping(ctx context.Context) error
}

// Set builds a membership set from the loaded id list.
func Set(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
