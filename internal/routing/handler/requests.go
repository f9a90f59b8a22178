package handler

import "time"

// RouteRequest is the body of POST /api/route.
type RouteRequest struct {
	Sender    string     `json:"sender"`
	Text      string     `json:"text"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}
