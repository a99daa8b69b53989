package searchapi

// Highlight markup wrapped around matched terms in hit fields.
const (
	HighlightOpen  = `<span class="highlight">`
	HighlightClose = `</span>`
)

// Hit is a single search result record. Hits are immutable once received;
// title, summary and content may contain server-side highlight markup.
type Hit struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
}

// Page is the server response for one (query, page) request.
type Page struct {
	TotalHits   int   `json:"total_hits"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	Results     []Hit `json:"results"`
}
