package health

// healthResponse is the liveness probe payload.
type healthResponse struct {
	Status string `json:"status"`
}

type statusResponse struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Uptime  float64 `json:"uptime"` // seconds since process start
}
