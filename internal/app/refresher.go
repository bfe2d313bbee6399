package app

import (
	"context"
	"time"

	"github.com/boardwalk-tui/boardwalk/internal/state"
)

const defaultRefreshInterval = 45 * time.Second

// StartRefresher launches a background goroutine that re-fetches the
// board tree at a fixed cadence, picking up changes made from other
// clients. It returns immediately.
func StartRefresher(ctx context.Context, store *state.Store, interval time.Duration, logf func(format string, args ...any)) {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			refresh(ctx, store, logf)
		}
	}()
}

// refresh pulls boards and the active board's lists and cards. Errors
// are logged, never surfaced: a failed background poll leaves the last
// known tree in place.
func refresh(ctx context.Context, store *state.Store, logf func(format string, args ...any)) {
	if err := store.FetchBoards(ctx); err != nil {
		logf("board refresh failed: %v", err)
		return
	}
	board, ok := store.ActiveBoard()
	if !ok {
		return
	}
	if err := store.FetchListsForBoard(ctx, board.ID); err != nil {
		logf("list refresh failed: %v", err)
		return
	}
	board, ok = store.ActiveBoard()
	if !ok {
		return
	}
	for _, list := range board.Lists {
		if err := store.FetchCardsForList(ctx, list.ID); err != nil {
			logf("card refresh failed for %q: %v", list.Title, err)
			return
		}
	}
}
