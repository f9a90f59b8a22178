package handler

import "naijacare/internal/routing"

// RouteResponse is a routing decision plus the prototype disclaimer.
type RouteResponse struct {
	Decision   string   `json:"decision"`
	Reason     string   `json:"reason"`
	Flags      []string `json:"flags"`
	Disclaimer string   `json:"disclaimer"`
}

func toRouteResponse(d routing.Decision) RouteResponse {
	flags := d.Flags
	if flags == nil {
		flags = []string{}
	}
	return RouteResponse{
		Decision:   string(d.Outcome),
		Reason:     d.Reason,
		Flags:      flags,
		Disclaimer: Disclaimer,
	}
}
