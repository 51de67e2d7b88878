package job

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/recall/internal/domain/task"
)

// jobToHash converts a job to the field map stored with HSET.
func jobToHash(j task.Job) (map[string]string, error) {
	m := map[string]string{
		"id":          j.ID,
		"collection":  j.Collection,
		"doc_id":      j.DocID,
		"content_uri": j.ContentURI,
		"content_raw": j.ContentRaw,
		"state":       string(j.State),
		"attempts":    strconv.Itoa(j.Attempts),
		"enqueued_at": formatTime(j.EnqueuedAt),
	}
	if j.Payload != nil {
		raw, err := json.Marshal(j.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		m["payload"] = string(raw)
	}
	return m, nil
}

// jobFromHash hydrates a job from an HGETALL result. Payload numbers decode as json.Number
// so integers survive the round trip.
func jobFromHash(m map[string]string) (task.Job, error) {
	j := task.Job{
		ID:         m["id"],
		Collection: m["collection"],
		DocID:      m["doc_id"],
		ContentURI: m["content_uri"],
		ContentRaw: m["content_raw"],
		State:      task.State(m["state"]),
	}

	if s := m["attempts"]; s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return task.Job{}, fmt.Errorf("invalid attempts: %w", err)
		}
		j.Attempts = n
	}

	var err error
	if j.EnqueuedAt, err = parseTime(m["enqueued_at"]); err != nil {
		return task.Job{}, fmt.Errorf("invalid enqueued_at: %w", err)
	}
	if j.StartedAt, err = parseTime(m["started_at"]); err != nil {
		return task.Job{}, fmt.Errorf("invalid started_at: %w", err)
	}
	if j.FinishedAt, err = parseTime(m["finished_at"]); err != nil {
		return task.Job{}, fmt.Errorf("invalid finished_at: %w", err)
	}

	if raw := m["payload"]; raw != "" {
		dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
		dec.UseNumber()
		if err := dec.Decode(&j.Payload); err != nil {
			return task.Job{}, fmt.Errorf("unmarshal payload: %w", err)
		}
	}

	if raw := m["outcome"]; raw != "" {
		var o task.Outcome
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			return task.Job{}, fmt.Errorf("unmarshal outcome: %w", err)
		}
		j.Outcome = &o
	}

	return j, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
