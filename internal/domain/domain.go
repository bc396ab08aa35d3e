package domain

// Review is a single user review. Only Text is read by the summarizer.
type Review struct {
	ID        string
	Text      string
	Language  string
	VotedUp   bool
	CreatedAt int64
}

// Page is one response of a cursor-paginated review source.
type Page struct {
	Reviews []Review
	// Cursor is the server-issued token for the next page. HasCursor is false
	// when the response carried no cursor at all.
	Cursor    string
	HasCursor bool
}

type App struct {
	ID    string
	Title string
	URL   string
}

type Subscription struct {
	ID     int64
	ChatID int64
	AppID  string
	Title  string
}
