package view

// Pagination carries pagination controls for the listing page.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	NextPage    int
	PrevPage    int
	HasNext     bool
	HasPrev     bool
}

// IndexPage is the template state for the thread listing.
type IndexPage struct {
	UserID     string
	NumThreads int64
	Threads    []Thread
	Pagination Pagination
}

// ThreadPage is the template state for a thread detail view.
type ThreadPage struct {
	UserID      string
	Thread      Thread
	NumComments int
	Comments    []Comment
}

// WritePage is the template state for the compose form.
type WritePage struct {
	UserID string
}
