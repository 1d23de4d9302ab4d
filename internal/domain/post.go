package domain

// Post is a blog post as stored by the backend. ID is assigned by the server on creation.
type Post struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostData is the payload sent when creating or updating a post.
type PostData struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Data returns the editable fields of the post.
func (p Post) Data() PostData {
	return PostData{
		Title:   p.Title,
		Content: p.Content,
	}
}

// PostsStatus tracks the fetch cycle of the post collection.
type PostsStatus string

const (
	StatusIdle      PostsStatus = "idle"
	StatusLoading   PostsStatus = "loading"
	StatusSucceeded PostsStatus = "succeeded"
	StatusFailed    PostsStatus = "failed"
)

// PostCollection is the in-memory view of the backend post collection.
type PostCollection struct {
	Posts  []Post
	Status PostsStatus
	// Error holds the message of the last failed fetch, or "" if there is none.
	Error string
}
