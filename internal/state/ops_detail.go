package state

import (
	"context"
	"io"
	"strings"

	"github.com/boardwalk-tui/boardwalk/internal/remote"
)

// Comments and attachments are deliberately not optimistic: losing one
// locally costs more than a moment of latency, so local state changes
// only after the server confirms. Each operation is keyed by the
// comment/attachment's own identifier, never by array index.

// LoadCardDetail fetches the comments and attachments of a card. Called
// lazily when the card popup opens; the results are not part of the
// eagerly-loaded board tree.
func (s *Store) LoadCardDetail(ctx context.Context, cardID ID) error {
	serverID, err := s.cardServerID(cardID)
	if err != nil {
		return err
	}

	comments, err := s.svc.FetchComments(ctx, serverID)
	if err != nil {
		return err
	}
	attachments, err := s.svc.FetchAttachments(ctx, serverID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, card := s.tree.card(cardID)
	if card == nil {
		return notFound("card", cardID)
	}
	card.Comments = make([]Comment, 0, len(comments))
	for _, wire := range comments {
		card.Comments = append(card.Comments, commentFromWire(wire))
	}
	card.Attachments = make([]Attachment, 0, len(attachments))
	for _, wire := range attachments {
		card.Attachments = append(card.Attachments, attachmentFromWire(wire))
	}
	card.DetailLoaded = true
	s.markDirtyLocked()
	return nil
}

// AddComment posts a comment and appends it locally once confirmed.
func (s *Store) AddComment(ctx context.Context, cardID ID, text string) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, validationf("comment text is empty")
	}
	serverID, err := s.cardServerID(cardID)
	if err != nil {
		return Comment{}, err
	}

	wire, err := s.svc.AddComment(ctx, serverID, text)
	if err != nil {
		return Comment{}, err
	}

	comment := commentFromWire(wire)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, card := s.tree.card(cardID); card != nil {
		card.Comments = append(card.Comments, comment)
		s.markDirtyLocked()
	}
	return comment, nil
}

// UpdateComment edits a comment by its identifier.
func (s *Store) UpdateComment(ctx context.Context, cardID, commentID ID, text string) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, validationf("comment text is empty")
	}
	serverID, ok := commentID.ServerID()
	if !ok {
		return Comment{}, notFound("comment", commentID)
	}

	wire, err := s.svc.UpdateComment(ctx, serverID, text)
	if err != nil {
		return Comment{}, err
	}

	updated := commentFromWire(wire)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, card := s.tree.card(cardID); card != nil {
		for i := range card.Comments {
			if card.Comments[i].ID == commentID {
				card.Comments[i].Text = updated.Text
				s.markDirtyLocked()
				break
			}
		}
	}
	return updated, nil
}

// DeleteComment removes a comment by its identifier.
func (s *Store) DeleteComment(ctx context.Context, cardID, commentID ID) error {
	serverID, ok := commentID.ServerID()
	if !ok {
		return notFound("comment", commentID)
	}
	if err := s.svc.DeleteComment(ctx, serverID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, card := s.tree.card(cardID); card != nil {
		for i := range card.Comments {
			if card.Comments[i].ID == commentID {
				card.Comments = append(card.Comments[:i], card.Comments[i+1:]...)
				s.markDirtyLocked()
				break
			}
		}
	}
	return nil
}

// AddAttachment uploads file content for a card and records the
// attachment locally once confirmed.
func (s *Store) AddAttachment(ctx context.Context, cardID ID, filename, mimeType string, content io.Reader) (Attachment, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return Attachment{}, validationf("attachment filename is empty")
	}
	serverID, err := s.cardServerID(cardID)
	if err != nil {
		return Attachment{}, err
	}

	wire, err := s.svc.UploadAttachment(ctx, serverID, filename, mimeType, content)
	if err != nil {
		return Attachment{}, err
	}

	attachment := attachmentFromWire(wire)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, card := s.tree.card(cardID); card != nil {
		card.Attachments = append(card.Attachments, attachment)
		s.markDirtyLocked()
	}
	return attachment, nil
}

// Attachments returns the attachments of a card, fetching them if the
// detail has not been loaded yet.
func (s *Store) Attachments(ctx context.Context, cardID ID) ([]Attachment, error) {
	s.mu.Lock()
	_, card := s.tree.card(cardID)
	if card != nil && card.DetailLoaded {
		out := append([]Attachment(nil), card.Attachments...)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	if err := s.LoadCardDetail(ctx, cardID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, card = s.tree.card(cardID)
	if card == nil {
		return nil, notFound("card", cardID)
	}
	return append([]Attachment(nil), card.Attachments...), nil
}

// DeleteAttachment removes an attachment by its identifier.
func (s *Store) DeleteAttachment(ctx context.Context, cardID, attachmentID ID) error {
	serverID, ok := attachmentID.ServerID()
	if !ok {
		return notFound("attachment", attachmentID)
	}
	if err := s.svc.DeleteAttachment(ctx, serverID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, card := s.tree.card(cardID); card != nil {
		for i := range card.Attachments {
			if card.Attachments[i].ID == attachmentID {
				card.Attachments = append(card.Attachments[:i], card.Attachments[i+1:]...)
				s.markDirtyLocked()
				break
			}
		}
	}
	return nil
}

func (s *Store) cardServerID(cardID ID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, card := s.tree.card(cardID)
	if card == nil {
		return 0, notFound("card", cardID)
	}
	serverID, ok := card.ID.ServerID()
	if !ok {
		return 0, validationf("card %q is not confirmed yet", cardID)
	}
	return serverID, nil
}

func commentFromWire(wire remote.Comment) Comment {
	return Comment{
		ID:        IDFromServer(wire.ID),
		Author:    wire.UserName,
		Text:      wire.Text,
		CreatedAt: wire.ParsedCreatedAt(),
	}
}

func attachmentFromWire(wire remote.Attachment) Attachment {
	return Attachment{
		ID:         IDFromServer(wire.ID),
		Filename:   wire.Filename,
		MimeType:   wire.MimeType,
		URL:        wire.URL,
		UploadedAt: wire.ParsedUploadedAt(),
	}
}
