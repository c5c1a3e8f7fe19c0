package model

// CatalogMovie is a catalog search hit already shaped like a MovieEntry so
// clients can post it back to a session with only addedBy filled in.
type CatalogMovie struct {
	ID          MovieID `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  *string `json:"posterPath"`
	ReleaseDate *string `json:"releaseDate"`
	VoteAverage float64 `json:"voteAverage"`
}

// CatalogPage is one page of catalog results.
type CatalogPage struct {
	Movies       []CatalogMovie `json:"movies"`
	TotalPages   int            `json:"totalPages"`
	TotalResults int            `json:"totalResults"`
	CurrentPage  int            `json:"currentPage"`
}

// Genre is a catalog genre tag.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CatalogDetails extends CatalogMovie with fields only the details lookup
// returns.
type CatalogDetails struct {
	CatalogMovie
	Runtime          int     `json:"runtime"`
	Genres           []Genre `json:"genres"`
	OriginalLanguage string  `json:"originalLanguage"`
	Popularity       float64 `json:"popularity"`
}
