package audit

// Stats aggregates audit entries for reporting. It exposes counts only.
type Stats struct {
	TotalMessages  int            `json:"total_messages"`
	Decisions      map[string]int `json:"decisions"`
	EmergencyCount int            `json:"emergency_count"`
}

// Summarize sums entries into Stats.
func Summarize(entries []Entry) Stats {
	stats := Stats{Decisions: make(map[string]int)}
	for _, e := range entries {
		stats.TotalMessages++
		stats.Decisions[e.Decision]++
		if e.HasEmergencyFlag {
			stats.EmergencyCount++
		}
	}
	return stats
}
