package task

import "sort"

// unknownError is reported for completed jobs that stored no outcome.
const unknownError = "Unknown error"

// JobStatus is the classified status of one document in a batch.
type JobStatus struct {
	DocID  string
	Status State
	Result map[string]any
	Error  string
}

// Summary tallies classified jobs. NotFound jobs count toward Total only.
type Summary struct {
	Total      int
	Queued     int
	InProgress int
	Complete   int
	Failed     int
}

// Report is a point-in-time view of a batch task.
type Report struct {
	TaskID  string
	Jobs    []JobStatus
	Summary Summary
}

// Done reports whether nothing is left queued or running.
func (r Report) Done() bool {
	return r.Summary.Queued+r.Summary.InProgress == 0
}

// Aggregate classifies jobs and builds the report. A complete job whose outcome
// is not a success is reclassified as failed. Jobs are ordered by doc id.
func Aggregate(taskID string, jobs []Job) Report {
	statuses := make([]JobStatus, 0, len(jobs))
	var sum Summary

	for _, j := range jobs {
		st := Classify(j)
		statuses = append(statuses, st)

		switch st.Status {
		case StateQueued:
			sum.Queued++
		case StateInProgress:
			sum.InProgress++
		case StateComplete:
			sum.Complete++
		case StateFailed:
			sum.Failed++
		}
	}

	sort.SliceStable(statuses, func(a, b int) bool { return statuses[a].DocID < statuses[b].DocID })
	sum.Total = len(statuses)

	return Report{TaskID: taskID, Jobs: statuses, Summary: sum}
}

// Classify maps one job's queue state and outcome to its report status.
func Classify(j Job) JobStatus {
	st := JobStatus{DocID: j.DocID}

	switch j.State {
	case StateComplete, StateFailed:
		if j.Outcome != nil && j.Outcome.Succeeded() {
			st.Status = StateComplete
			st.Result = j.Outcome.Result
			return st
		}
		st.Status = StateFailed
		st.Error = unknownError
		if j.Outcome != nil && j.Outcome.Error != "" {
			st.Error = j.Outcome.Error
		}
	case StateInProgress:
		st.Status = StateInProgress
	case StateNotFound:
		st.Status = StateNotFound
	default:
		st.Status = StateQueued
	}
	return st
}
