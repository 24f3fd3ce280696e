package models

import "time"

type AgentLog struct {
	ID        string         `json:"id"`
	AgentType string         `json:"agent_type"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details"`
	Timestamp time.Time      `json:"timestamp"`
}
