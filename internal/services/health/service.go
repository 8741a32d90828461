// Package health reports process readiness for the health endpoint.
package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Status is the health payload.
type Status struct {
	OK       bool   `json:"ok"`
	Storage  string `json:"storage"`
	Database string `json:"database,omitempty"`
	LLM      string `json:"llm"`
}

// Service checks the database and names the active model provider.
type Service struct {
	DB  Pinger
	LLM string
}

// NewService constructs a health service. db may be nil when repositories
// are in memory.
func NewService(db Pinger, llmName string) *Service {
	return &Service{DB: db, LLM: llmName}
}

// Status pings the database when one is configured. A failed ping marks the
// process unhealthy.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Storage: "memory", LLM: s.LLM}
	if s.DB == nil {
		return st
	}
	st.Storage = "postgres"
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		st.OK = false
		st.Database = "unavailable"
		return st
	}
	st.Database = "ok"
	return st
}
