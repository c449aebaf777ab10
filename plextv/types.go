package plextv

// User is the plex.tv account behind a token.
type User struct {
	ID       int    `json:"id"`
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Thumb    string `json:"thumb"`
}

// Resource is a device linked to the account. Media servers report
// "server" in Provides.
type Resource struct {
	Name             string       `json:"name"`
	Product          string       `json:"product"`
	ClientIdentifier string       `json:"clientIdentifier"`
	Provides         string       `json:"provides"`
	AccessToken      string       `json:"accessToken"`
	Owned            bool         `json:"owned"`
	Connections      []Connection `json:"connections"`
}

// Connection is one reachable address for a resource.
type Connection struct {
	URI      string `json:"uri"`
	Protocol string `json:"protocol"`
	Address  string `json:"address"`
	Port     int    `json:"port"`
	Local    bool   `json:"local"`
	Relay    bool   `json:"relay"`
}
