package api

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind    string
	Port    int
	APIKey  string // empty disables authentication
	HeapDir string // live heap directory, served at /api/v1/heap
}

// HeapSummary describes a heap without its contents
type HeapSummary struct {
	Tick      string   `json:"tick"`
	Hash      string   `json:"hash"`
	Digest    string   `json:"digest"`
	Memo      int      `json:"memo"`
	Disk      int      `json:"disk"`
	Balances  int      `json:"balances"`
	Functions []string `json:"functions"`
}

// SnapshotResponse is an archived snapshot's manifest and summary
type SnapshotResponse struct {
	ID      string      `json:"id"`
	Created string      `json:"created"`
	Heap    HeapSummary `json:"heap"`
}
