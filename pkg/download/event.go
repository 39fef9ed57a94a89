package download

import "fmt"

type EventKind int

const (
	JobStarted EventKind = iota
	JobFinished
	JobFailed
	TaskStarted
	TaskChunk
	TaskFinished
	TaskFailed
)

var eventKindNames = [...]string{
	JobStarted:   "job_started",
	JobFinished:  "job_finished",
	JobFailed:    "job_failed",
	TaskStarted:  "task_started",
	TaskChunk:    "task_chunk",
	TaskFinished: "task_finished",
	TaskFailed:   "task_failed",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventKindNames[k]
}

// jobIndex is the Task value carried by job level events.
const jobIndex = -1

// Event is a progress or status signal emitted while a job runs. Only the
// fields relevant to Kind are set:
//
//	JobStarted   Tasks, Bytes
//	TaskChunk    Total, Size
//	TaskFailed   Err
//
// Task is the index of the task inside its job, or -1 for job events.
type Event struct {
	Kind  EventKind
	Task  int
	Tasks int
	Bytes uint64
	Total uint64
	Size  int
	Err   error
}

func (e Event) IsJobEvent() bool {
	return e.Task == jobIndex
}

func (e Event) String() string {
	switch e.Kind {
	case JobStarted:
		return fmt.Sprintf("%s{tasks=%d bytes=%d}", e.Kind, e.Tasks, e.Bytes)
	case TaskChunk:
		return fmt.Sprintf("%s{task=%d total=%d size=%d}", e.Kind, e.Task, e.Total, e.Size)
	case TaskFailed:
		return fmt.Sprintf("%s{task=%d err=%v}", e.Kind, e.Task, e.Err)
	case JobFinished, JobFailed:
		return e.Kind.String()
	default:
		return fmt.Sprintf("%s{task=%d}", e.Kind, e.Task)
	}
}

func jobStarted(tasks int, bytes uint64) Event {
	return Event{Kind: JobStarted, Task: jobIndex, Tasks: tasks, Bytes: bytes}
}

func jobEvent(kind EventKind) Event {
	return Event{Kind: kind, Task: jobIndex}
}

func taskEvent(kind EventKind, task int) Event {
	return Event{Kind: kind, Task: task}
}

func taskChunk(task int, total uint64, size int) Event {
	return Event{Kind: TaskChunk, Task: task, Total: total, Size: size}
}

func taskFailed(task int, err error) Event {
	return Event{Kind: TaskFailed, Task: task, Err: err}
}
