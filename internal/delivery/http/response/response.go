package response

// Fixed client-facing messages.
const (
	MissingURLMessage  = "Please pass a url on the query string or in the request body"
	InvalidURLMessage  = "Please pass a VALID url"
	FetchFailedMessage = "Could not fetch the requested url"
	InternalMessage    = "Internal server error"
)

// HealthResponse reports the state of the configured cache backend.
type HealthResponse struct {
	Cache   string `json:"cache"` // "healthy" or "unhealthy"
	Backend string `json:"backend"`
}
