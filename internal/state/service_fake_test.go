package state

import (
	"context"
	"io"
	"sync"

	"github.com/boardwalk-tui/boardwalk/internal/remote"
)

// fakeService scripts the remote API per method. Unset hooks return zero
// values, so each test wires only the calls it cares about. Calls are
// counted so tests can assert a path was (or was not) taken.
type fakeService struct {
	mu    sync.Mutex
	calls map[string]int

	fetchBoards      func(ctx context.Context) ([]remote.Board, error)
	fetchWorkspaces  func(ctx context.Context) ([]remote.Workspace, error)
	fetchWorkspace   func(ctx context.Context, id int64) (remote.Workspace, error)
	createWorkspace  func(ctx context.Context, name, description string, userID int64) (remote.Workspace, error)
	fetchLists       func(ctx context.Context, boardID int64) ([]remote.List, error)
	createBoard      func(ctx context.Context, name, color string) (remote.Board, error)
	createList       func(ctx context.Context, boardID int64, title string, position float64) (remote.List, error)
	renameList       func(ctx context.Context, listID int64, title string) (remote.List, error)
	fetchCards       func(ctx context.Context, listID int64) ([]remote.Card, error)
	createCard       func(ctx context.Context, listID int64, title string, position float64, description string) (remote.Card, error)
	updateCard       func(ctx context.Context, cardID int64, title, description string) (remote.Card, error)
	moveCard         func(ctx context.Context, cardID, newListID int64, position float64) (remote.Card, error)
	fetchComments    func(ctx context.Context, cardID int64) ([]remote.Comment, error)
	addComment       func(ctx context.Context, cardID int64, text string) (remote.Comment, error)
	updateComment    func(ctx context.Context, commentID int64, text string) (remote.Comment, error)
	deleteComment    func(ctx context.Context, commentID int64) error
	fetchAttachments func(ctx context.Context, cardID int64) ([]remote.Attachment, error)
	uploadAttachment func(ctx context.Context, cardID int64, filename, mimeType string, content io.Reader) (remote.Attachment, error)
	deleteAttachment func(ctx context.Context, attachmentID int64) error
}

var _ remote.BoardService = (*fakeService)(nil)

func newFakeService() *fakeService {
	return &fakeService{calls: make(map[string]int)}
}

func (f *fakeService) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeService) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeService) FetchBoards(ctx context.Context) ([]remote.Board, error) {
	f.record("FetchBoards")
	if f.fetchBoards != nil {
		return f.fetchBoards(ctx)
	}
	return nil, nil
}

func (f *fakeService) FetchWorkspaces(ctx context.Context) ([]remote.Workspace, error) {
	f.record("FetchWorkspaces")
	if f.fetchWorkspaces != nil {
		return f.fetchWorkspaces(ctx)
	}
	return nil, nil
}

func (f *fakeService) FetchWorkspace(ctx context.Context, id int64) (remote.Workspace, error) {
	f.record("FetchWorkspace")
	if f.fetchWorkspace != nil {
		return f.fetchWorkspace(ctx, id)
	}
	return remote.Workspace{}, nil
}

func (f *fakeService) CreateWorkspace(ctx context.Context, name, description string, userID int64) (remote.Workspace, error) {
	f.record("CreateWorkspace")
	if f.createWorkspace != nil {
		return f.createWorkspace(ctx, name, description, userID)
	}
	return remote.Workspace{}, nil
}

func (f *fakeService) FetchLists(ctx context.Context, boardID int64) ([]remote.List, error) {
	f.record("FetchLists")
	if f.fetchLists != nil {
		return f.fetchLists(ctx, boardID)
	}
	return nil, nil
}

func (f *fakeService) CreateBoard(ctx context.Context, name, color string) (remote.Board, error) {
	f.record("CreateBoard")
	if f.createBoard != nil {
		return f.createBoard(ctx, name, color)
	}
	return remote.Board{}, nil
}

func (f *fakeService) CreateList(ctx context.Context, boardID int64, title string, position float64) (remote.List, error) {
	f.record("CreateList")
	if f.createList != nil {
		return f.createList(ctx, boardID, title, position)
	}
	return remote.List{}, nil
}

func (f *fakeService) RenameList(ctx context.Context, listID int64, title string) (remote.List, error) {
	f.record("RenameList")
	if f.renameList != nil {
		return f.renameList(ctx, listID, title)
	}
	return remote.List{}, nil
}

func (f *fakeService) FetchCards(ctx context.Context, listID int64) ([]remote.Card, error) {
	f.record("FetchCards")
	if f.fetchCards != nil {
		return f.fetchCards(ctx, listID)
	}
	return nil, nil
}

func (f *fakeService) CreateCard(ctx context.Context, listID int64, title string, position float64, description string) (remote.Card, error) {
	f.record("CreateCard")
	if f.createCard != nil {
		return f.createCard(ctx, listID, title, position, description)
	}
	return remote.Card{}, nil
}

func (f *fakeService) UpdateCard(ctx context.Context, cardID int64, title, description string) (remote.Card, error) {
	f.record("UpdateCard")
	if f.updateCard != nil {
		return f.updateCard(ctx, cardID, title, description)
	}
	return remote.Card{}, nil
}

func (f *fakeService) MoveCard(ctx context.Context, cardID, newListID int64, position float64) (remote.Card, error) {
	f.record("MoveCard")
	if f.moveCard != nil {
		return f.moveCard(ctx, cardID, newListID, position)
	}
	return remote.Card{}, nil
}

func (f *fakeService) FetchComments(ctx context.Context, cardID int64) ([]remote.Comment, error) {
	f.record("FetchComments")
	if f.fetchComments != nil {
		return f.fetchComments(ctx, cardID)
	}
	return nil, nil
}

func (f *fakeService) AddComment(ctx context.Context, cardID int64, text string) (remote.Comment, error) {
	f.record("AddComment")
	if f.addComment != nil {
		return f.addComment(ctx, cardID, text)
	}
	return remote.Comment{}, nil
}

func (f *fakeService) UpdateComment(ctx context.Context, commentID int64, text string) (remote.Comment, error) {
	f.record("UpdateComment")
	if f.updateComment != nil {
		return f.updateComment(ctx, commentID, text)
	}
	return remote.Comment{}, nil
}

func (f *fakeService) DeleteComment(ctx context.Context, commentID int64) error {
	f.record("DeleteComment")
	if f.deleteComment != nil {
		return f.deleteComment(ctx, commentID)
	}
	return nil
}

func (f *fakeService) FetchAttachments(ctx context.Context, cardID int64) ([]remote.Attachment, error) {
	f.record("FetchAttachments")
	if f.fetchAttachments != nil {
		return f.fetchAttachments(ctx, cardID)
	}
	return nil, nil
}

func (f *fakeService) UploadAttachment(ctx context.Context, cardID int64, filename, mimeType string, content io.Reader) (remote.Attachment, error) {
	f.record("UploadAttachment")
	if f.uploadAttachment != nil {
		return f.uploadAttachment(ctx, cardID, filename, mimeType, content)
	}
	return remote.Attachment{}, nil
}

func (f *fakeService) DeleteAttachment(ctx context.Context, attachmentID int64) error {
	f.record("DeleteAttachment")
	if f.deleteAttachment != nil {
		return f.deleteAttachment(ctx, attachmentID)
	}
	return nil
}

// memKV is a KV fake that counts writes, for flush-coalescing tests.
type memKV struct {
	mu   sync.Mutex
	m    map[string]string
	sets int
}

func newMemKV() *memKV {
	return &memKV{m: make(map[string]string)}
}

func (k *memKV) Get(key string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *memKV) Set(key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = value
	k.sets++
	return nil
}

func (k *memKV) setCount() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.sets
}
