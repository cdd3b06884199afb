// Package events provides event management functionality.
package events

import "time"

// EventType identifies a pipeline event
type EventType string

const (
	RunStarted      EventType = "RUN_STARTED"
	StageCompleted  EventType = "STAGE_COMPLETED"
	RunCompleted    EventType = "RUN_COMPLETED"
	RunFailed       EventType = "RUN_FAILED"
	JobSubmitted    EventType = "JOB_SUBMITTED"
	JobFinished     EventType = "JOB_FINISHED"
	ScheduleTrigger EventType = "SCHEDULE_TRIGGERED"
)

// AllTypes lists every event type, in emission order of a typical run
var AllTypes = []EventType{
	ScheduleTrigger,
	RunStarted,
	StageCompleted,
	JobSubmitted,
	JobFinished,
	RunCompleted,
	RunFailed,
}

// Event is what subscribers receive
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Module    string                 `json:"module"`
	Data      map[string]interface{} `json:"data"`
}
