package models

// SyncStats contains statistics from syncing one project
type SyncStats struct {
	Project    string `json:"project"`
	Fetched    int    `json:"fetched"`
	Upserted   int    `json:"upserted"`
	Errors     int    `json:"errors"`
	DurationMs int    `json:"duration_ms"`
}

// StoreStats summarizes the local corpus
type StoreStats struct {
	Total     int            `json:"total"`
	Open      int            `json:"open"`
	Closed    int            `json:"closed"`
	ByProject map[string]int `json:"by_project"`
}
