package download

import "net/url"

// Job is an immutable batch of tasks. Obtain one from a JobBuilder.
type Job struct {
	tasks      []Task
	taskCount  int
	totalBytes uint64
}

func newJob(tasks []Task) Job {
	var total uint64
	for _, t := range tasks {
		total += t.Size
	}
	return Job{tasks: tasks, taskCount: len(tasks), totalBytes: total}
}

// Tasks returns a copy of the job's tasks in submission order.
func (j Job) Tasks() []Task {
	return append([]Task(nil), j.tasks...)
}

func (j Job) TaskCount() int {
	return j.taskCount
}

// TotalBytes is the sum of the declared sizes of every task.
func (j Job) TotalBytes() uint64 {
	return j.totalBytes
}

type JobBuilder struct {
	tasks []Task
}

func NewJobBuilder() *JobBuilder {
	return &JobBuilder{}
}

// Push appends a task with decompression disabled.
func (b *JobBuilder) Push(u *url.URL, dest string, size uint64) *JobBuilder {
	return b.PushTask(NewTask(u, dest, size))
}

func (b *JobBuilder) PushTask(t Task) *JobBuilder {
	b.tasks = append(b.tasks, t)
	return b
}

func (b *JobBuilder) Len() int {
	return len(b.tasks)
}

// Build finalizes the job. The builder may keep being used; later pushes do
// not affect jobs already built.
func (b *JobBuilder) Build() Job {
	return newJob(append([]Task(nil), b.tasks...))
}
