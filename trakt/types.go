package trakt

// IDs cross-references a title across services. TMDB is the one the UI
// joins on for artwork and details.
type IDs struct {
	Trakt int    `json:"trakt,omitempty"`
	Slug  string `json:"slug,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  int    `json:"tmdb,omitempty"`
}

type Movie struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   IDs    `json:"ids"`
}

type Show struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   IDs    `json:"ids"`
}

// TrendingMovie wraps a movie with its current watcher count.
type TrendingMovie struct {
	Watchers int   `json:"watchers"`
	Movie    Movie `json:"movie"`
}

type TrendingShow struct {
	Watchers int  `json:"watchers"`
	Show     Show `json:"show"`
}

// ListItem is one watchlist entry; exactly one of Movie/Show is set
// depending on Type.
type ListItem struct {
	Rank     int    `json:"rank"`
	ListedAt string `json:"listed_at"`
	Type     string `json:"type"`
	Movie    *Movie `json:"movie,omitempty"`
	Show     *Show  `json:"show,omitempty"`
}

// SyncItems is the request body for watchlist mutations.
type SyncItems struct {
	Movies []Movie `json:"movies,omitempty"`
	Shows  []Show  `json:"shows,omitempty"`
}

// SyncResult reports what a watchlist mutation changed.
type SyncResult struct {
	Added    SyncCounts `json:"added"`
	Deleted  SyncCounts `json:"deleted"`
	Existing SyncCounts `json:"existing"`
}

type SyncCounts struct {
	Movies int `json:"movies"`
	Shows  int `json:"shows"`
}
