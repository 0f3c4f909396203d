package apimodels

// RelayRequest is the body of POST /api/gemini.
type RelayRequest struct {
	// Prompt is the raw user query to relay to the model.
	Prompt string `json:"prompt"`

	// Domain optionally routes the query through a domain persona
	// (finance, healthcare or news).
	Domain string `json:"domain,omitempty"`
}

type RelayResponse struct {
	// The post-processed model reply.
	Response string `json:"response"`

	// Metadata about the relay call.
	Metrics Metrics `json:"metrics"`
}

type Metrics struct {
	// Wall-clock time spent serving the request.
	ResponseTime string `json:"responseTime"`

	// Rough token estimate of the reply (length/4 heuristic).
	TokenCount int `json:"tokenCount"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
