package services

import (
	"context"
	"net/http"
	"os"
	"time"
)

const onlineProbeTimeout = 3 * time.Second

// NetworkService answers "are we online right now". A probe failure means
// offline; there is no retry here, callers re-probe when they care again.
type NetworkService struct {
	probeURL   string
	httpClient *http.Client
}

func NewNetworkService() *NetworkService {
	probeURL := os.Getenv("POS_PROBE_URL")
	if probeURL == "" {
		probeURL = "https://www.google.com/"
	}
	return &NetworkService{
		probeURL:   probeURL,
		httpClient: &http.Client{},
	}
}

// IsOnline sends a HEAD probe with a short timeout. Any error counts as
// offline.
func (ns *NetworkService) IsOnline() bool {
	ctx, cancel := context.WithTimeout(context.Background(), onlineProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, ns.probeURL, nil)
	if err != nil {
		return false
	}
	res, err := ns.httpClient.Do(req)
	if err != nil {
		return false
	}
	res.Body.Close()
	return true
}
