package models

import "time"

// Well-known event types. The type field is an open tagged variant: any
// string is accepted on the wire, these are only the types the daemon
// knows how to classify for display.
const (
	EventAgentRegistered = "AGENT_REGISTERED"
	EventAgentWorkStart  = "AGENT_WORK_START"
	EventToolEdit        = "TOOL_EDIT"
	EventToolRead        = "TOOL_READ"
	EventToolBash        = "TOOL_BASH"
	EventTestStarted     = "TEST_STARTED"
	EventTestPassed      = "TEST_PASSED"
	EventTestFailed      = "TEST_FAILED"
	EventGitCommit       = "GIT_COMMIT"
	EventJobPushed       = "JOB_PUSHED"
	EventJobClaimed      = "JOB_CLAIMED"
	EventJobCompleted    = "JOB_COMPLETED"
	EventJobRequeued     = "JOB_REQUEUED"
	EventModelChanged    = "MODEL_CHANGED"
)

// Event is one append-only record in the event log. Records are JSON,
// one per line, so the log stays tail -f compatible.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      string            `json:"event"`
	AgentID   string            `json:"agent_id"`
	PID       int               `json:"pid,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
