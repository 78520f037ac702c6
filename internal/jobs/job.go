package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusRunning  JobStatus = "running"
	StatusDone     JobStatus = "done"
	StatusError    JobStatus = "error"
	StatusCanceled JobStatus = "canceled"
)

type Mode string

const (
	ModeDedupe  Mode = "dedupe"
	ModeNearest Mode = "nearest"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDedupe, ModeNearest:
		return Mode(s), nil
	case "":
		return ModeDedupe, nil
	}
	return "", fmt.Errorf("unknown job mode %q", s)
}

type JobResult struct {
	Mode       Mode   `json:"mode"`
	Rows       int    `json:"rows"`
	Duplicates int    `json:"duplicates,omitempty"`
	Sheet      string `json:"sheet"`
	Output     string `json:"-"`        // Full path
	Filename   string `json:"filename"` // Just filename for download
}

type Job struct {
	ID        string
	Mode      Mode
	CreatedAt time.Time

	mu       sync.RWMutex
	status   JobStatus
	logs     []string
	progress int // 0-100
	result   *JobResult
	err      string
	cancel   context.CancelFunc
}

// Snapshot is a consistent copy of a job's mutable state.
type Snapshot struct {
	ID       string     `json:"id"`
	Mode     Mode       `json:"mode"`
	Status   JobStatus  `json:"status"`
	Progress int        `json:"progress"`
	Error    string     `json:"error,omitempty"`
	Result   *JobResult `json:"result,omitempty"`
	Logs     []string   `json:"logs,omitempty"`
}

func newJob(mode Mode) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Mode:      mode,
		CreatedAt: time.Now(),
		status:    StatusRunning,
		logs:      []string{},
	}
}

func (j *Job) Log(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.appendLog(msg)
}

func (j *Job) appendLog(msg string) {
	ts := time.Now().Format("15:04:05")
	j.logs = append(j.logs, fmt.Sprintf("[%s] %s", ts, msg))
}

func (j *Job) SetProgress(current, total int, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if total > 0 {
		j.progress = int(float64(current) / float64(total) * 100)
	}
	if msg != "" {
		j.appendLog(msg)
	}
}

func (j *Job) Status() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// Snapshot copies state; logs are included only when withLogs is set.
func (j *Job) Snapshot(withLogs bool) Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	s := Snapshot{
		ID:       j.ID,
		Mode:     j.Mode,
		Status:   j.status,
		Progress: j.progress,
		Error:    j.err,
	}
	if j.result != nil {
		r := *j.result
		s.Result = &r
	}
	if withLogs {
		s.Logs = append([]string(nil), j.logs...)
	}
	return s
}

// Result returns the finished result, nil while running or after failure.
func (j *Job) Result() *JobResult {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.result == nil {
		return nil
	}
	r := *j.result
	return &r
}

func (j *Job) Cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusRunning {
		return
	}
	j.appendLog("Cancel requested by user")
	if j.cancel != nil {
		j.cancel()
	}
}

func (j *Job) finish(res *JobResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = StatusDone
	j.result = res
	j.progress = 100
	j.appendLog("Job completed successfully")
}

func (j *Job) fail(status JobStatus, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = status
	j.err = msg
	j.logs = append(j.logs, "[ERROR] "+msg)
}

type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*Job)}
}

func (s *Store) add(j *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = j
}

// Get returns nil for unknown ids.
func (s *Store) Get(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[id]
}
