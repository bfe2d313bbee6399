package remote

import (
	"encoding/json"
	"time"
)

// envelope is the canonical response wrapper the board service uses for
// every JSON endpoint: {"status": 1, "message": "...", "data": ...}.
// Status is 1 on success; anything else is a server-reported failure even
// when the HTTP status is 2xx.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Board mirrors a board record as returned by /api/boards.
type Board struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	BackgroundColor string `json:"background_color"`
}

// List mirrors a list record as returned by /api/lists/{boardId}.
type List struct {
	ID       int64   `json:"id"`
	BoardID  int64   `json:"board_id"`
	Title    string  `json:"title"`
	Position float64 `json:"position"`
}

// Card mirrors a card record as returned by /api/cards/{listId}.
type Card struct {
	ID          int64   `json:"id"`
	ListID      int64   `json:"list_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CoverURL    string  `json:"cover_url"`
	Position    float64 `json:"position"`
}

// Comment mirrors a comment record keyed by its own id.
type Comment struct {
	ID        int64  `json:"id"`
	CardID    int64  `json:"card_id"`
	UserID    int64  `json:"user_id"`
	UserName  string `json:"user_name"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// Attachment mirrors an attachment record keyed by its own id.
type Attachment struct {
	ID         int64  `json:"id"`
	CardID     int64  `json:"card_id"`
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
}

// Workspace mirrors a workspace record as returned by /api/workspaces.
type Workspace struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	UserID      int64  `json:"user_id"`
}

const serviceTimestampLayout = "2006-01-02 15:04:05"

// ParsedCreatedAt returns the comment timestamp as time.Time when possible.
func (c Comment) ParsedCreatedAt() time.Time {
	return parseTime(c.CreatedAt)
}

// ParsedUploadedAt returns the upload timestamp as time.Time when possible.
func (a Attachment) ParsedUploadedAt() time.Time {
	return parseTime(a.UploadedAt)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, serviceTimestampLayout} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
