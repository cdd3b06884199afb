package events

// RunStartedData contains data for RunStarted events
type RunStartedData struct {
	RunID   string  `json:"run_id"`
	Backend string  `json:"backend"`
	Digits  int     `json:"digits"`
	Radius  float64 `json:"radius"`
	Shots   int     `json:"shots"`
}

// EventType returns the event type for RunStartedData
func (d *RunStartedData) EventType() EventType { return RunStarted }

// StageCompletedData contains data for StageCompleted events
type StageCompletedData struct {
	RunID      string `json:"run_id"`
	Stage      string `json:"stage"`
	DurationMs int64  `json:"duration_ms"`
}

// EventType returns the event type for StageCompletedData
func (d *StageCompletedData) EventType() EventType { return StageCompleted }

// RunCompletedData contains data for RunCompleted events
type RunCompletedData struct {
	RunID          string  `json:"run_id"`
	Backend        string  `json:"backend"`
	TopState       string  `json:"top_state"`
	TopProbability float64 `json:"top_probability"`
	SuccessRate    float64 `json:"success_rate"`
	ElapsedMs      int64   `json:"elapsed_ms"`
}

// EventType returns the event type for RunCompletedData
func (d *RunCompletedData) EventType() EventType { return RunCompleted }

// RunFailedData contains data for RunFailed events
type RunFailedData struct {
	RunID string `json:"run_id"`
	Error string `json:"error"`
}

// EventType returns the event type for RunFailedData
func (d *RunFailedData) EventType() EventType { return RunFailed }

// JobData contains data for JobSubmitted and JobFinished events
type JobData struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Shots  int    `json:"shots"`
	Done   bool   `json:"-"`
}

// EventType returns JobFinished once the job is done, JobSubmitted before
func (d *JobData) EventType() EventType {
	if d.Done {
		return JobFinished
	}
	return JobSubmitted
}

// ScheduleTriggeredData contains data for ScheduleTrigger events
type ScheduleTriggeredData struct {
	Spec string `json:"spec"`
}

// EventType returns the event type for ScheduleTriggeredData
func (d *ScheduleTriggeredData) EventType() EventType { return ScheduleTrigger }
