package state

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/boardwalk-tui/boardwalk/internal/remote"
)

func TestLoadCardDetail(t *testing.T) {
	svc := seedService()
	svc.fetchComments = func(ctx context.Context, cardID int64) ([]remote.Comment, error) {
		return []remote.Comment{
			{ID: 501, CardID: cardID, UserName: "ada", Text: "looks good", CreatedAt: "2026-08-10T12:00:00Z"},
		}, nil
	}
	svc.fetchAttachments = func(ctx context.Context, cardID int64) ([]remote.Attachment, error) {
		return []remote.Attachment{
			{ID: 701, CardID: cardID, Filename: "mock.png", MimeType: "image/png"},
		}, nil
	}
	store := newSeededStore(t, svc, nil)

	if err := store.LoadCardDetail(context.Background(), "100"); err != nil {
		t.Fatalf("LoadCardDetail: %v", err)
	}

	tree := store.Snapshot()
	card := tree.Boards[0].Lists[0].Cards[0]
	if !card.DetailLoaded {
		t.Fatal("detail not marked loaded")
	}
	if len(card.Comments) != 1 || card.Comments[0].Author != "ada" {
		t.Fatalf("comments = %+v", card.Comments)
	}
	if card.Comments[0].CreatedAt.IsZero() {
		t.Fatal("comment timestamp not parsed")
	}
	if len(card.Attachments) != 1 || card.Attachments[0].Filename != "mock.png" {
		t.Fatalf("attachments = %+v", card.Attachments)
	}
}

func TestAddCommentIsNotOptimistic(t *testing.T) {
	svc := seedService()
	boom := errors.New("boom")
	svc.addComment = func(ctx context.Context, cardID int64, text string) (remote.Comment, error) {
		return remote.Comment{}, boom
	}
	store := newSeededStore(t, svc, nil)

	if _, err := store.AddComment(context.Background(), "100", "hello"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	tree := store.Snapshot()
	if n := len(tree.Boards[0].Lists[0].Cards[0].Comments); n != 0 {
		t.Fatalf("failed comment appeared locally (%d comments)", n)
	}

	svc.addComment = func(ctx context.Context, cardID int64, text string) (remote.Comment, error) {
		return remote.Comment{ID: 502, CardID: cardID, UserName: "ada", Text: text}, nil
	}
	comment, err := store.AddComment(context.Background(), "100", "  hello  ")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment.ID != "502" || comment.Text != "hello" {
		t.Fatalf("comment = %+v", comment)
	}
	tree = store.Snapshot()
	if n := len(tree.Boards[0].Lists[0].Cards[0].Comments); n != 1 {
		t.Fatalf("confirmed comment missing (%d comments)", n)
	}
}

func TestDeleteCommentByID(t *testing.T) {
	svc := seedService()
	svc.fetchComments = func(ctx context.Context, cardID int64) ([]remote.Comment, error) {
		return []remote.Comment{
			{ID: 501, CardID: cardID, Text: "first"},
			{ID: 502, CardID: cardID, Text: "second"},
		}, nil
	}
	store := newSeededStore(t, svc, nil)
	if err := store.LoadCardDetail(context.Background(), "100"); err != nil {
		t.Fatalf("LoadCardDetail: %v", err)
	}

	if err := store.DeleteComment(context.Background(), "100", "501"); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	tree := store.Snapshot()
	comments := tree.Boards[0].Lists[0].Cards[0].Comments
	if len(comments) != 1 || comments[0].ID != "502" {
		t.Fatalf("comments after delete = %+v", comments)
	}
}

func TestAddAttachmentValidatesAndConfirms(t *testing.T) {
	svc := seedService()
	store := newSeededStore(t, svc, nil)

	if _, err := store.AddAttachment(context.Background(), "100", "  ", "", nil); !IsValidation(err) {
		t.Fatalf("err = %v, want validation", err)
	}

	var gotMime string
	svc.uploadAttachment = func(ctx context.Context, cardID int64, filename, mimeType string, content io.Reader) (remote.Attachment, error) {
		gotMime = mimeType
		return remote.Attachment{ID: 701, CardID: cardID, Filename: filename, MimeType: mimeType}, nil
	}
	a, err := store.AddAttachment(context.Background(), "100", "notes.txt", "text/plain", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("AddAttachment: %v", err)
	}
	if a.ID != "701" || gotMime != "text/plain" {
		t.Fatalf("attachment = %+v, mime %q", a, gotMime)
	}
	tree := store.Snapshot()
	if n := len(tree.Boards[0].Lists[0].Cards[0].Attachments); n != 1 {
		t.Fatalf("attachment count = %d", n)
	}
}
