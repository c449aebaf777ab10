package tmdb

// Title is a movie or TV entry as it appears in list responses (trending,
// search, discover). Movie results populate Title/ReleaseDate, TV results
// populate Name/FirstAirDate.
type Title struct {
	ID           int     `json:"id"`
	MediaType    string  `json:"media_type,omitempty"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
}

// Page is a paginated list response.
type Page struct {
	Page         int     `json:"page"`
	Results      []Title `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Genre is a TMDB genre tag.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is the full movie details response.
type Movie struct {
	Title
	Tagline string  `json:"tagline"`
	Runtime int     `json:"runtime"`
	Status  string  `json:"status"`
	Genres  []Genre `json:"genres"`
}

// Show is the full TV details response.
type Show struct {
	Title
	Tagline          string  `json:"tagline"`
	Status           string  `json:"status"`
	NumberOfSeasons  int     `json:"number_of_seasons"`
	NumberOfEpisodes int     `json:"number_of_episodes"`
	Genres           []Genre `json:"genres"`
}
