package domain

// Page holds cursor-based pagination parameters for list queries.
// Cursor is an opaque continuation token returned by a previous listing with
// the same filters; empty means start from the beginning.
type Page struct {
	Limit  int32
	Cursor string
}
