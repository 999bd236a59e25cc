package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/abdulachik/skyposter/internal/source"
)

// Valid reports whether item can be posted at all: it needs a thumbnail and
// a name accepted by nameFilter. A nil filter accepts every name.
func Valid(item source.CatalogItem, nameFilter *source.Filter) bool {
	return item.ThumbnailURL != "" && nameFilter.Match(item.Name)
}

// Select picks a valid item uniformly at random among those not yet posted.
// When every valid item has been posted the ledger is reset and the pick is
// made from all valid items. The ledger is not updated with the pick.
func Select(ctx context.Context, l Ledger, items []source.CatalogItem, nameFilter *source.Filter, rng *rand.Rand) (source.CatalogItem, error) {
	var valid []source.CatalogItem
	for _, item := range items {
		if Valid(item, nameFilter) {
			valid = append(valid, item)
		}
	}
	if len(valid) == 0 {
		return source.CatalogItem{}, fmt.Errorf("%w: %d items listed, none valid", ErrNoCandidates, len(items))
	}

	var fresh []source.CatalogItem
	for _, item := range valid {
		posted, err := l.HasPosted(ctx, item.ID)
		if err != nil {
			return source.CatalogItem{}, err
		}
		if !posted {
			fresh = append(fresh, item)
		}
	}

	if len(fresh) == 0 {
		slog.Info("all catalog items posted, resetting ledger", "items", len(valid))
		if err := l.Reset(ctx); err != nil {
			return source.CatalogItem{}, err
		}
		fresh = valid
	}

	var n int
	if rng == nil {
		n = rand.IntN(len(fresh))
	} else {
		n = rng.IntN(len(fresh))
	}

	item := fresh[n]
	slog.Debug("selected catalog item", "id", item.ID, "name", item.Name, "candidates", len(fresh))
	return item, nil
}
