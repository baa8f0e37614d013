package models

import "github.com/nkkko/eventops/pkg/querykey"

// InvalidateResponse reports the keys published by POST /invalidate
type InvalidateResponse struct {
	Keys []string `json:"keys"`
}

// InvalidateResponseFromKeys renders published keys
func InvalidateResponseFromKeys(keys []querykey.Key) *InvalidateResponse {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return &InvalidateResponse{Keys: out}
}

// ViewListResponse lists the views that can be read
type ViewListResponse struct {
	Views []string `json:"views"`
}

// HealthResponse is returned by the readiness check
type HealthResponse struct {
	Status        string `json:"status"`
	Subscriptions int    `json:"subscriptions"`
	MountedViews  int    `json:"mounted_views"`
}
