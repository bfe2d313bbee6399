package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// BoardService defines the operations the board state store needs from the
// remote API. This interface is implemented by *Client and can be faked in
// tests.
type BoardService interface {
	FetchBoards(ctx context.Context) ([]Board, error)
	FetchWorkspaces(ctx context.Context) ([]Workspace, error)
	FetchWorkspace(ctx context.Context, id int64) (Workspace, error)
	CreateWorkspace(ctx context.Context, name, description string, userID int64) (Workspace, error)
	FetchLists(ctx context.Context, boardID int64) ([]List, error)
	CreateBoard(ctx context.Context, name, backgroundColor string) (Board, error)
	CreateList(ctx context.Context, boardID int64, title string, position float64) (List, error)
	RenameList(ctx context.Context, listID int64, title string) (List, error)
	FetchCards(ctx context.Context, listID int64) ([]Card, error)
	CreateCard(ctx context.Context, listID int64, title string, position float64, description string) (Card, error)
	UpdateCard(ctx context.Context, cardID int64, title, description string) (Card, error)
	MoveCard(ctx context.Context, cardID, newListID int64, position float64) (Card, error)
	FetchComments(ctx context.Context, cardID int64) ([]Comment, error)
	AddComment(ctx context.Context, cardID int64, text string) (Comment, error)
	UpdateComment(ctx context.Context, commentID int64, text string) (Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
	FetchAttachments(ctx context.Context, cardID int64) ([]Attachment, error)
	UploadAttachment(ctx context.Context, cardID int64, filename, mimeType string, content io.Reader) (Attachment, error)
	DeleteAttachment(ctx context.Context, attachmentID int64) error
}

// Ensure Client implements BoardService at compile time.
var _ BoardService = (*Client)(nil)

// TokenSource supplies the bearer credential attached to every request.
// An empty token causes requests to fail fast with an auth error before
// any network traffic is issued.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource backed by a fixed string.
type StaticToken string

// Token returns the underlying token value.
func (t StaticToken) Token() string { return string(t) }

// Client talks to the board service HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    TokenSource
	userAgent string
}

const (
	defaultUserAgent = "boardwalk/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for the given base URL. The scheme defaults to
// https when omitted since the board service is a remote host.
func NewClient(baseURL string, tokens TokenSource) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		tokens:    tokens,
		userAgent: defaultUserAgent,
	}, nil
}

// FetchBoards retrieves all boards visible to the current credential.
func (c *Client) FetchBoards(ctx context.Context) ([]Board, error) {
	var boards []Board
	if err := c.get(ctx, "/api/boards", &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// FetchWorkspaces retrieves all workspaces for the current credential.
func (c *Client) FetchWorkspaces(ctx context.Context) ([]Workspace, error) {
	var workspaces []Workspace
	if err := c.get(ctx, "/api/workspaces", &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}

// FetchWorkspace retrieves a single workspace by id.
func (c *Client) FetchWorkspace(ctx context.Context, id int64) (Workspace, error) {
	var ws Workspace
	if err := c.get(ctx, "/api/workspaces/"+formatID(id), &ws); err != nil {
		return Workspace{}, err
	}
	return ws, nil
}

// CreateWorkspace creates a workspace owned by the given user.
func (c *Client) CreateWorkspace(ctx context.Context, name, description string, userID int64) (Workspace, error) {
	body := map[string]any{"name": name, "description": description, "user_id": userID}
	var ws Workspace
	if err := c.send(ctx, http.MethodPost, "/api/workspaces", body, &ws); err != nil {
		return Workspace{}, err
	}
	return ws, nil
}

// CreateBoard creates a board and returns the server-assigned record.
func (c *Client) CreateBoard(ctx context.Context, name, backgroundColor string) (Board, error) {
	body := map[string]any{"name": name, "background_color": backgroundColor}
	var board Board
	if err := c.send(ctx, http.MethodPost, "/api/boards", body, &board); err != nil {
		return Board{}, err
	}
	return board, nil
}

// FetchLists retrieves the lists of one board. An empty slice is a valid
// result: a board may legitimately have no lists yet.
func (c *Client) FetchLists(ctx context.Context, boardID int64) ([]List, error) {
	var lists []List
	if err := c.get(ctx, "/api/lists/"+formatID(boardID), &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// CreateList creates a list on the given board at the given position.
func (c *Client) CreateList(ctx context.Context, boardID int64, title string, position float64) (List, error) {
	body := map[string]any{"board_id": boardID, "title": title, "position": position}
	var list List
	if err := c.send(ctx, http.MethodPost, "/api/lists", body, &list); err != nil {
		return List{}, err
	}
	return list, nil
}

// RenameList updates a list's title. The server echoes the list id in its
// response; a mismatch with the requested id is surfaced as a protocol
// error rather than accepted silently.
func (c *Client) RenameList(ctx context.Context, listID int64, title string) (List, error) {
	rel := &url.URL{
		Path:     "/api/lists/" + formatID(listID),
		RawQuery: url.Values{"name": []string{title}}.Encode(),
	}
	op := "rename list"
	var list List
	if err := c.doURL(ctx, http.MethodPut, op, rel, nil, &list); err != nil {
		return List{}, err
	}
	if list.ID != listID {
		return List{}, newError(KindProtocol, op,
			fmt.Sprintf("server echoed list id %d, requested %d", list.ID, listID), 0, nil)
	}
	return list, nil
}

// FetchCards retrieves the cards of one list.
func (c *Client) FetchCards(ctx context.Context, listID int64) ([]Card, error) {
	var cards []Card
	if err := c.get(ctx, "/api/cards/"+formatID(listID), &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// CreateCard creates a card on the given list.
func (c *Client) CreateCard(ctx context.Context, listID int64, title string, position float64, description string) (Card, error) {
	body := map[string]any{
		"list_id":     listID,
		"title":       title,
		"position":    position,
		"description": description,
	}
	var card Card
	if err := c.send(ctx, http.MethodPost, "/api/cards", body, &card); err != nil {
		return Card{}, err
	}
	return card, nil
}

// UpdateCard updates a card's title and description. Echoed-id mismatches
// are protocol errors, same as RenameList.
func (c *Client) UpdateCard(ctx context.Context, cardID int64, title, description string) (Card, error) {
	body := map[string]any{"title": title, "description": description}
	op := "update card"
	var card Card
	if err := c.send(ctx, http.MethodPut, "/api/cards/"+formatID(cardID), body, &card); err != nil {
		return Card{}, err
	}
	if card.ID != cardID {
		return Card{}, newError(KindProtocol, op,
			fmt.Sprintf("server echoed card id %d, requested %d", card.ID, cardID), 0, nil)
	}
	return card, nil
}

// MoveCard relocates a card to a new list and position.
func (c *Client) MoveCard(ctx context.Context, cardID, newListID int64, position float64) (Card, error) {
	body := map[string]any{"new_list_id": newListID, "position": position}
	var card Card
	if err := c.send(ctx, http.MethodPut, "/api/cards/"+formatID(cardID)+"/move", body, &card); err != nil {
		return Card{}, err
	}
	return card, nil
}

// FetchComments retrieves the comments of one card.
func (c *Client) FetchComments(ctx context.Context, cardID int64) ([]Comment, error) {
	rel := &url.URL{
		Path:     "/api/comments",
		RawQuery: url.Values{"card_id": []string{formatID(cardID)}}.Encode(),
	}
	var comments []Comment
	if err := c.doURL(ctx, http.MethodGet, "fetch comments", rel, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// AddComment posts a comment on a card.
func (c *Client) AddComment(ctx context.Context, cardID int64, text string) (Comment, error) {
	body := map[string]any{"card_id": cardID, "text": text}
	var comment Comment
	if err := c.send(ctx, http.MethodPost, "/api/comments", body, &comment); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

// UpdateComment edits a comment by its own id.
func (c *Client) UpdateComment(ctx context.Context, commentID int64, text string) (Comment, error) {
	body := map[string]any{"text": text}
	var comment Comment
	if err := c.send(ctx, http.MethodPut, "/api/comments/"+formatID(commentID), body, &comment); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

// DeleteComment removes a comment by its own id.
func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	return c.send(ctx, http.MethodDelete, "/api/comments/"+formatID(commentID), nil, nil)
}

// FetchAttachments retrieves the attachments of one card.
func (c *Client) FetchAttachments(ctx context.Context, cardID int64) ([]Attachment, error) {
	rel := &url.URL{
		Path:     "/api/attachments",
		RawQuery: url.Values{"card_id": []string{formatID(cardID)}}.Encode(),
	}
	var attachments []Attachment
	if err := c.doURL(ctx, http.MethodGet, "fetch attachments", rel, nil, &attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}

// UploadAttachment uploads file content for a card as a multipart request.
func (c *Client) UploadAttachment(ctx context.Context, cardID int64, filename, mimeType string, content io.Reader) (Attachment, error) {
	op := "upload attachment"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("card_id", formatID(cardID)); err != nil {
		return Attachment{}, fmt.Errorf("%s: %w", op, err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return Attachment{}, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return Attachment{}, fmt.Errorf("%s: read content: %w", op, err)
	}
	if mimeType != "" {
		if err := writer.WriteField("mime_type", mimeType); err != nil {
			return Attachment{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := writer.Close(); err != nil {
		return Attachment{}, fmt.Errorf("%s: %w", op, err)
	}

	rel := &url.URL{Path: "/api/attachments"}
	req, err := c.newRequest(ctx, http.MethodPost, op, rel, &buf)
	if err != nil {
		return Attachment{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var attachment Attachment
	if err := c.execute(req, op, &attachment); err != nil {
		return Attachment{}, err
	}
	return attachment, nil
}

// DeleteAttachment removes an attachment by its own id.
func (c *Client) DeleteAttachment(ctx context.Context, attachmentID int64) error {
	return c.send(ctx, http.MethodDelete, "/api/attachments/"+formatID(attachmentID), nil, nil)
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, http.MethodGet, "get "+path, rel, nil, dest)
}

func (c *Client) send(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	op := strings.ToLower(method) + " " + path
	return c.doURL(ctx, method, op, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method, op string, rel *url.URL, body, dest any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := c.newRequest(ctx, method, op, rel, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.execute(req, op, dest)
}

func (c *Client) newRequest(ctx context.Context, method, op string, rel *url.URL, body io.Reader) (*http.Request, error) {
	token := strings.TrimSpace(c.tokens.Token())
	if token == "" {
		return nil, newError(KindAuth, op, "no credential stored; run `boardwalk login`", 0, nil)
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// execute runs the request and normalizes every response into either dest
// or a classified *Error. The store never sees raw response shapes.
func (c *Client) execute(req *http.Request, op string, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		// Cancellation is not a network failure; let the caller's
		// errors.Is(err, context.Canceled) checks work unchanged.
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return newError(KindNetwork, op, err.Error(), 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return newError(KindAuth, op, "credential rejected", resp.StatusCode, nil)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return newError(KindNetwork, op, "read response: "+err.Error(), resp.StatusCode, err)
	}

	// An HTML error page where JSON was expected means the server (or a
	// proxy in front of it) is misconfigured; surface that instead of a
	// JSON parse crash.
	if !jsonContentType(resp.Header.Get("Content-Type")) {
		return newError(KindProtocol, op,
			fmt.Sprintf("server returned %q where JSON was expected", resp.Header.Get("Content-Type")),
			resp.StatusCode, nil)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return newError(KindProtocol, op, "undecodable response body", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 {
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("http status %d", resp.StatusCode)
		}
		return newError(KindServer, op, message, resp.StatusCode, nil)
	}
	if env.Status != 1 {
		message := env.Message
		if message == "" {
			message = "request rejected"
		}
		return newError(KindServer, op, message, resp.StatusCode, nil)
	}
	if dest == nil {
		return nil
	}
	// A null or absent data field with a slice destination is a valid
	// empty result, not a protocol error.
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return newError(KindProtocol, op, "unexpected data shape", resp.StatusCode, err)
	}
	return nil
}

func jsonContentType(value string) bool {
	if value == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("api base URL is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
