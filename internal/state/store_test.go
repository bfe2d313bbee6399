package state

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/boardwalk-tui/boardwalk/internal/remote"
)

// seedService scripts a small two-list board:
//
//	workspace 1 "Acme"
//	board 1 "Sprint"
//	  list 10 "Todo":  cards 100, 101, 102
//	  list 11 "Doing": cards 200, 201
func seedService() *fakeService {
	svc := newFakeService()
	svc.fetchWorkspaces = func(ctx context.Context) ([]remote.Workspace, error) {
		return []remote.Workspace{{ID: 1, Name: "Acme"}}, nil
	}
	svc.fetchBoards = func(ctx context.Context) ([]remote.Board, error) {
		return []remote.Board{{ID: 1, Name: "Sprint"}}, nil
	}
	svc.fetchLists = func(ctx context.Context, boardID int64) ([]remote.List, error) {
		return []remote.List{
			{ID: 10, BoardID: 1, Title: "Todo", Position: 0},
			{ID: 11, BoardID: 1, Title: "Doing", Position: 1024},
		}, nil
	}
	svc.fetchCards = func(ctx context.Context, listID int64) ([]remote.Card, error) {
		switch listID {
		case 10:
			return []remote.Card{
				{ID: 100, ListID: 10, Title: "Write docs", Position: 0},
				{ID: 101, ListID: 10, Title: "Fix login", Position: 1024},
				{ID: 102, ListID: 10, Title: "Ship", Position: 2048},
			}, nil
		case 11:
			return []remote.Card{
				{ID: 200, ListID: 11, Title: "Review", Position: 0},
				{ID: 201, ListID: 11, Title: "Deploy", Position: 1024},
			}, nil
		}
		return nil, nil
	}
	return svc
}

func newSeededStore(t *testing.T, svc *fakeService, kv KV) *Store {
	t.Helper()
	store := New(Options{
		Service:    svc,
		Cache:      kv,
		FlushDelay: 10 * time.Millisecond,
		Logf:       t.Logf,
	})
	ctx := context.Background()
	if err := store.FetchWorkspaces(ctx); err != nil {
		t.Fatalf("FetchWorkspaces: %v", err)
	}
	if err := store.FetchBoards(ctx); err != nil {
		t.Fatalf("FetchBoards: %v", err)
	}
	if err := store.FetchListsForBoard(ctx, "1"); err != nil {
		t.Fatalf("FetchListsForBoard: %v", err)
	}
	for _, listID := range []ID{"10", "11"} {
		if err := store.FetchCardsForList(ctx, listID); err != nil {
			t.Fatalf("FetchCardsForList(%s): %v", listID, err)
		}
	}
	return store
}

func cardTitles(cards []Card) []string {
	titles := make([]string, len(cards))
	for i, c := range cards {
		titles[i] = c.Title
	}
	return titles
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func assertAscendingPositions(t *testing.T, cards []Card) {
	t.Helper()
	for i := 1; i < len(cards); i++ {
		if cards[i-1].Position >= cards[i].Position {
			t.Fatalf("positions not strictly increasing at %d: %v >= %v",
				i, cards[i-1].Position, cards[i].Position)
		}
	}
}

func TestFetchBuildsTree(t *testing.T) {
	store := newSeededStore(t, seedService(), nil)
	tree := store.Snapshot()

	if tree.ActiveWorkspace != "1" {
		t.Fatalf("active workspace = %q, want 1", tree.ActiveWorkspace)
	}
	if tree.ActiveBoard != "1" {
		t.Fatalf("active board = %q, want 1", tree.ActiveBoard)
	}
	if len(tree.Boards) != 1 || len(tree.Boards[0].Lists) != 2 {
		t.Fatalf("unexpected tree shape: %+v", tree.Boards)
	}
	todo := tree.Boards[0].Lists[0]
	if todo.Title != "Todo" || !todo.CardsLoaded {
		t.Fatalf("first list = %q loaded=%v", todo.Title, todo.CardsLoaded)
	}
	want := []string{"Write docs", "Fix login", "Ship"}
	if got := cardTitles(todo.Cards); !equalStrings(got, want) {
		t.Fatalf("todo cards = %v, want %v", got, want)
	}
}

func TestFetchEmptyListIsSuccess(t *testing.T) {
	svc := seedService()
	svc.fetchCards = func(ctx context.Context, listID int64) ([]remote.Card, error) {
		return nil, nil
	}
	store := newSeededStore(t, svc, nil)
	tree := store.Snapshot()

	list := tree.Boards[0].Lists[0]
	if !list.CardsLoaded {
		t.Fatal("empty fetch should still mark cards loaded")
	}
	if list.Cards == nil || len(list.Cards) != 0 {
		t.Fatalf("cards = %#v, want empty non-nil slice", list.Cards)
	}
}

func TestFetchPreservesLoadedSubtrees(t *testing.T) {
	svc := seedService()
	store := newSeededStore(t, svc, nil)

	// A board-level refresh must not discard the lists and cards that
	// are already loaded under it.
	if err := store.FetchBoards(context.Background()); err != nil {
		t.Fatalf("FetchBoards: %v", err)
	}
	tree := store.Snapshot()
	if len(tree.Boards[0].Lists) != 2 {
		t.Fatalf("lists dropped by board refresh: %+v", tree.Boards[0])
	}
	if len(tree.Boards[0].Lists[0].Cards) != 3 {
		t.Fatalf("cards dropped by board refresh")
	}
}

func TestFetchListsKeepsUnconfirmedList(t *testing.T) {
	svc := seedService()
	release := make(chan struct{})
	svc.createList = func(ctx context.Context, boardID int64, title string, position float64) (remote.List, error) {
		<-release
		return remote.List{ID: 42, BoardID: boardID, Title: title, Position: position}, nil
	}
	store := newSeededStore(t, svc, nil)

	done := make(chan error, 1)
	go func() {
		_, err := store.CreateList(context.Background(), "1", "Backlog")
		done <- err
	}()

	deadline := time.After(2 * time.Second)
	for {
		tree := store.Snapshot()
		if len(tree.Boards[0].Lists) == 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("optimistic list never appeared")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// A refresh landing while the create is in flight must not strip
	// the unconfirmed list, or the confirmation has nowhere to land.
	if err := store.FetchListsForBoard(context.Background(), "1"); err != nil {
		t.Fatalf("FetchListsForBoard: %v", err)
	}
	tree := store.Snapshot()
	if len(tree.Boards[0].Lists) != 3 {
		t.Fatalf("refresh dropped the unconfirmed list: %d lists", len(tree.Boards[0].Lists))
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	tree = store.Snapshot()
	var confirmed bool
	for _, l := range tree.Boards[0].Lists {
		if l.ID.Provisional() {
			t.Fatalf("provisional id survived confirmation: %q", l.ID)
		}
		if l.ID == "42" {
			confirmed = true
		}
	}
	if !confirmed {
		t.Fatalf("confirmed list 42 missing: %+v", tree.Boards[0].Lists)
	}
}

func TestFetchCardsKeepsUnconfirmedCard(t *testing.T) {
	svc := seedService()
	release := make(chan struct{})
	svc.createCard = func(ctx context.Context, listID int64, title string, position float64, description string) (remote.Card, error) {
		<-release
		return remote.Card{ID: 103, ListID: listID, Title: title, Position: position}, nil
	}
	store := newSeededStore(t, svc, nil)

	done := make(chan error, 1)
	go func() {
		_, err := store.CreateCard(context.Background(), "10", "New card", -1, "")
		done <- err
	}()

	deadline := time.After(2 * time.Second)
	for {
		tree := store.Snapshot()
		if len(tree.Boards[0].Lists[0].Cards) == 4 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("optimistic card never appeared")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if err := store.FetchCardsForList(context.Background(), "10"); err != nil {
		t.Fatalf("FetchCardsForList: %v", err)
	}
	tree := store.Snapshot()
	if len(tree.Boards[0].Lists[0].Cards) != 4 {
		t.Fatalf("refresh dropped the unconfirmed card: %d cards", len(tree.Boards[0].Lists[0].Cards))
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("CreateCard: %v", err)
	}
	tree = store.Snapshot()
	var confirmed bool
	for _, c := range tree.Boards[0].Lists[0].Cards {
		if c.ID.Provisional() {
			t.Fatalf("provisional id survived confirmation: %q", c.ID)
		}
		if c.ID == "103" {
			confirmed = true
		}
	}
	if !confirmed {
		t.Fatalf("confirmed card 103 missing: %+v", tree.Boards[0].Lists[0].Cards)
	}
}

func TestCreateListConfirmsProvisionalID(t *testing.T) {
	svc := seedService()
	svc.createList = func(ctx context.Context, boardID int64, title string, position float64) (remote.List, error) {
		return remote.List{ID: 12, BoardID: boardID, Title: title, Position: position}, nil
	}
	store := newSeededStore(t, svc, nil)

	list, err := store.CreateList(context.Background(), "1", "  Done ")
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	if list.ID != "12" {
		t.Fatalf("confirmed id = %q, want 12", list.ID)
	}
	if list.Title != "Done" {
		t.Fatalf("title = %q, want trimmed %q", list.Title, "Done")
	}

	tree := store.Snapshot()
	for _, l := range tree.Boards[0].Lists {
		if l.ID.Provisional() {
			t.Fatalf("provisional id survived confirmation: %q", l.ID)
		}
	}
	if len(tree.Boards[0].Lists) != 3 {
		t.Fatalf("list count = %d, want 3", len(tree.Boards[0].Lists))
	}
	last := tree.Boards[0].Lists[2]
	if last.ID != "12" || last.Position != 2048 {
		t.Fatalf("appended list = %+v, want id 12 at position 2048", last)
	}
}

func TestCreateListValidation(t *testing.T) {
	svc := seedService()
	store := newSeededStore(t, svc, nil)

	_, err := store.CreateList(context.Background(), "1", "   ")
	if !IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if svc.callCount("CreateList") != 0 {
		t.Fatal("validation failure must not reach the server")
	}

	_, err = store.CreateList(context.Background(), "999", "Done")
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want not-found error", err)
	}
}

func TestCreateCardAppearsBeforeConfirmation(t *testing.T) {
	svc := seedService()
	release := make(chan struct{})
	svc.createCard = func(ctx context.Context, listID int64, title string, position float64, description string) (remote.Card, error) {
		<-release
		return remote.Card{ID: 103, ListID: listID, Title: title, Position: position}, nil
	}
	store := newSeededStore(t, svc, nil)

	done := make(chan error, 1)
	go func() {
		_, err := store.CreateCard(context.Background(), "10", "New card", -1, "")
		done <- err
	}()

	// The optimistic insert must land while the server call is in
	// flight.
	deadline := time.After(2 * time.Second)
	for {
		tree := store.Snapshot()
		if len(tree.Boards[0].Lists[0].Cards) == 4 {
			card := tree.Boards[0].Lists[0].Cards[3]
			if !card.ID.Provisional() {
				t.Fatalf("unconfirmed card has id %q, want provisional", card.ID)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("optimistic card never appeared")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("CreateCard: %v", err)
	}
	tree := store.Snapshot()
	card := tree.Boards[0].Lists[0].Cards[3]
	if card.ID != "103" {
		t.Fatalf("confirmed id = %q, want 103", card.ID)
	}
}

func TestCreateCardFailureReverts(t *testing.T) {
	svc := seedService()
	boom := errors.New("boom")
	svc.createCard = func(ctx context.Context, listID int64, title string, position float64, description string) (remote.Card, error) {
		return remote.Card{}, boom
	}
	store := newSeededStore(t, svc, nil)
	before := store.Snapshot()

	_, err := store.CreateCard(context.Background(), "10", "Doomed", -1, "")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}

	after := store.Snapshot()
	if !equalStrings(cardTitles(after.Boards[0].Lists[0].Cards), cardTitles(before.Boards[0].Lists[0].Cards)) {
		t.Fatalf("failed create left residue: %v", cardTitles(after.Boards[0].Lists[0].Cards))
	}
}

func TestMoveCardAcrossLists(t *testing.T) {
	svc := seedService()
	svc.moveCard = func(ctx context.Context, cardID, newListID int64, position float64) (remote.Card, error) {
		return remote.Card{ID: cardID, ListID: newListID, Position: position}, nil
	}
	store := newSeededStore(t, svc, nil)

	// Move "Write docs" between "Review" and "Deploy".
	if err := store.MoveCard(context.Background(), "100", "10", "11", 1); err != nil {
		t.Fatalf("MoveCard: %v", err)
	}

	tree := store.Snapshot()
	todo, doing := tree.Boards[0].Lists[0], tree.Boards[0].Lists[1]
	if got, want := cardTitles(todo.Cards), []string{"Fix login", "Ship"}; !equalStrings(got, want) {
		t.Fatalf("source list = %v, want %v", got, want)
	}
	if got, want := cardTitles(doing.Cards), []string{"Review", "Write docs", "Deploy"}; !equalStrings(got, want) {
		t.Fatalf("destination list = %v, want %v", got, want)
	}
	assertAscendingPositions(t, doing.Cards)
}

func TestMoveCardWithinList(t *testing.T) {
	svc := seedService()
	svc.moveCard = func(ctx context.Context, cardID, newListID int64, position float64) (remote.Card, error) {
		return remote.Card{ID: cardID, ListID: newListID, Position: position}, nil
	}
	store := newSeededStore(t, svc, nil)

	// "Ship" to the top of its own list.
	if err := store.MoveCard(context.Background(), "102", "10", "10", 0); err != nil {
		t.Fatalf("MoveCard: %v", err)
	}

	tree := store.Snapshot()
	want := []string{"Ship", "Write docs", "Fix login"}
	if got := cardTitles(tree.Boards[0].Lists[0].Cards); !equalStrings(got, want) {
		t.Fatalf("reorder = %v, want %v", got, want)
	}
	assertAscendingPositions(t, tree.Boards[0].Lists[0].Cards)
}

func TestMoveCardFailureReverts(t *testing.T) {
	svc := seedService()
	boom := errors.New("boom")
	svc.moveCard = func(ctx context.Context, cardID, newListID int64, position float64) (remote.Card, error) {
		return remote.Card{}, boom
	}
	store := newSeededStore(t, svc, nil)
	before := store.Snapshot()

	if err := store.MoveCard(context.Background(), "100", "10", "11", 0); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	after := store.Snapshot()
	for li := range before.Boards[0].Lists {
		got := cardTitles(after.Boards[0].Lists[li].Cards)
		want := cardTitles(before.Boards[0].Lists[li].Cards)
		if !equalStrings(got, want) {
			t.Fatalf("list %d after revert = %v, want %v", li, got, want)
		}
	}
}

func TestMoveCardRenumbersWhenGapExhausted(t *testing.T) {
	svc := seedService()
	svc.fetchCards = func(ctx context.Context, listID int64) ([]remote.Card, error) {
		if listID == 11 {
			// Adjacent float positions: no representable midpoint.
			return []remote.Card{
				{ID: 200, ListID: 11, Title: "Review", Position: 5},
				{ID: 201, ListID: 11, Title: "Deploy", Position: math.Nextafter(5, 6)},
			}, nil
		}
		return []remote.Card{
			{ID: 100, ListID: 10, Title: "Write docs", Position: 0},
		}, nil
	}
	svc.moveCard = func(ctx context.Context, cardID, newListID int64, position float64) (remote.Card, error) {
		return remote.Card{ID: cardID, ListID: newListID, Position: position}, nil
	}
	store := newSeededStore(t, svc, nil)

	if err := store.MoveCard(context.Background(), "100", "10", "11", 1); err != nil {
		t.Fatalf("MoveCard: %v", err)
	}

	tree := store.Snapshot()
	doing := tree.Boards[0].Lists[1]
	want := []string{"Review", "Write docs", "Deploy"}
	if got := cardTitles(doing.Cards); !equalStrings(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	assertAscendingPositions(t, doing.Cards)
}

func TestUpdateListTitleRevertsOnServerError(t *testing.T) {
	svc := seedService()
	svc.renameList = func(ctx context.Context, listID int64, title string) (remote.List, error) {
		return remote.List{}, &remote.Error{Kind: remote.KindProtocol, Op: "rename list", Message: "id mismatch"}
	}
	store := newSeededStore(t, svc, nil)

	err := store.UpdateListTitle(context.Background(), "10", "Backlog")
	if !remote.IsProtocol(err) {
		t.Fatalf("err = %v, want protocol error", err)
	}
	tree := store.Snapshot()
	if got := tree.Boards[0].Lists[0].Title; got != "Todo" {
		t.Fatalf("title after revert = %q, want Todo", got)
	}
}

func TestSetActiveWorkspaceStashesBoards(t *testing.T) {
	svc := seedService()
	svc.fetchWorkspaces = func(ctx context.Context) ([]remote.Workspace, error) {
		return []remote.Workspace{{ID: 1, Name: "Acme"}, {ID: 2, Name: "Side"}}, nil
	}
	store := newSeededStore(t, svc, nil)

	if err := store.SetActiveWorkspace("2"); err != nil {
		t.Fatalf("SetActiveWorkspace: %v", err)
	}
	tree := store.Snapshot()
	if len(tree.Boards) != 0 {
		t.Fatalf("workspace 2 should start cold, has boards %v", tree.Boards)
	}
	if tree.ActiveBoard != "" {
		t.Fatalf("active board = %q, want empty", tree.ActiveBoard)
	}

	// Switching back restores the warm subtree with no refetch.
	fetches := svc.callCount("FetchLists")
	if err := store.SetActiveWorkspace("1"); err != nil {
		t.Fatalf("SetActiveWorkspace back: %v", err)
	}
	tree = store.Snapshot()
	if len(tree.Boards) != 1 || len(tree.Boards[0].Lists) != 2 {
		t.Fatalf("warm subtree lost: %+v", tree.Boards)
	}
	if tree.ActiveBoard != "1" {
		t.Fatalf("active board = %q, want 1", tree.ActiveBoard)
	}
	if svc.callCount("FetchLists") != fetches {
		t.Fatal("switching back must not refetch")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	kv := newMemKV()
	svc := seedService()
	store := newSeededStore(t, svc, kv)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// A fresh store over the same cache paints the whole tree without
	// any fetch.
	revived := New(Options{Service: newFakeService(), Cache: kv, Logf: t.Logf})
	if err := revived.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	tree := revived.Snapshot()
	if tree.ActiveBoard != "1" || len(tree.Boards) != 1 {
		t.Fatalf("revived tree = %+v", tree)
	}
	want := []string{"Write docs", "Fix login", "Ship"}
	if got := cardTitles(tree.Boards[0].Lists[0].Cards); !equalStrings(got, want) {
		t.Fatalf("revived cards = %v, want %v", got, want)
	}
}

func TestLoadToleratesCorruptSnapshot(t *testing.T) {
	kv := newMemKV()
	kv.m[persistKey] = "{not json"
	store := New(Options{Service: newFakeService(), Cache: kv, Logf: t.Logf})
	if err := store.Load(); err != nil {
		t.Fatalf("Load should swallow corruption, got %v", err)
	}
	tree := store.Snapshot()
	if len(tree.Boards) != 0 || tree.ActiveBoard != "" {
		t.Fatalf("corrupt load produced state: %+v", tree)
	}
}

func TestDebouncedFlushCoalesces(t *testing.T) {
	kv := newMemKV()
	svc := seedService()
	store := New(Options{
		Service:    svc,
		Cache:      kv,
		FlushDelay: 50 * time.Millisecond,
		Logf:       t.Logf,
	})
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()
	if err := store.FetchWorkspaces(ctx); err != nil {
		t.Fatalf("FetchWorkspaces: %v", err)
	}
	if err := store.FetchBoards(ctx); err != nil {
		t.Fatalf("FetchBoards: %v", err)
	}
	if err := store.FetchListsForBoard(ctx, "1"); err != nil {
		t.Fatalf("FetchListsForBoard: %v", err)
	}
	if err := store.FetchCardsForList(ctx, "10"); err != nil {
		t.Fatalf("FetchCardsForList: %v", err)
	}
	if got := kv.setCount(); got != 0 {
		t.Fatalf("flushed %d times before the debounce expired", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for kv.setCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("debounced flush never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := kv.setCount(); got != 1 {
		t.Fatalf("flush count = %d, want 1 coalesced write", got)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	store := newSeededStore(t, seedService(), nil)
	snap := store.Snapshot()
	snap.Boards[0].Lists[0].Cards[0].Title = "mutated"
	snap.Boards[0].Name = "mutated"

	fresh := store.Snapshot()
	if fresh.Boards[0].Lists[0].Cards[0].Title == "mutated" {
		t.Fatal("snapshot shares card storage with the store")
	}
	if fresh.Boards[0].Name == "mutated" {
		t.Fatal("snapshot shares board storage with the store")
	}
}

func TestLogoutDropsEverything(t *testing.T) {
	kv := newMemKV()
	store := newSeededStore(t, seedService(), kv)
	if err := store.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	tree := store.Snapshot()
	if len(tree.Boards) != 0 || len(tree.Workspaces) != 0 {
		t.Fatalf("state survived logout: %+v", tree)
	}

	// The persisted snapshot must be overwritten too.
	revived := New(Options{Service: newFakeService(), Cache: kv, Logf: t.Logf})
	if err := revived.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := revived.Snapshot(); len(got.Boards) != 0 {
		t.Fatalf("previous session leaked through logout: %+v", got)
	}
}
