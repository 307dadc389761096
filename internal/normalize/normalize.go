// Package normalize turns raw job objects from either slurmrestd schema into
// the canonical slurmapi.Job record.
package normalize

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/mtelvers/go-slurm/pkg/slurmapi"
)

// Schema tags which endpoint a raw job object came from. The live scheduler
// and the accounting database report the same job in two different shapes.
type Schema int

const (
	Live Schema = iota
	Historical
)

func (s Schema) String() string {
	if s == Historical {
		return "historical"
	}
	return "live"
}

// exitInfo is the exit_code object, identical in both schemas. Envelope
// fields decode leniently so a malformed exit code degrades to absent.
type exitInfo struct {
	ReturnCode slurmapi.NoVal `json:"return_code"`
	Signal     struct {
		ID slurmapi.NoVal `json:"id"`
	} `json:"signal"`
}

type liveJob struct {
	JobID      *json.Number    `json:"job_id"`
	Name       *string         `json:"name"`
	UserName   *string         `json:"user_name"`
	JobState   []string        `json:"job_state"`
	ExitCode   json.RawMessage `json:"exit_code"`
	SubmitTime slurmapi.NoVal  `json:"submit_time"`
	StartTime  slurmapi.NoVal  `json:"start_time"`
	EndTime    slurmapi.NoVal  `json:"end_time"`
}

type histJob struct {
	JobID *json.Number `json:"job_id"`
	Name  *string      `json:"name"`
	User  *string      `json:"user"`
	State struct {
		Current []string `json:"current"`
	} `json:"state"`
	ExitCode json.RawMessage `json:"exit_code"`
	Time     json.RawMessage `json:"time"`
}

type histTime struct {
	Submission slurmapi.NoVal `json:"submission"`
	Start      slurmapi.NoVal `json:"start"`
	End        slurmapi.NoVal `json:"end"`
}

// Normalize parses one raw job object per the tagged schema. The required
// fields (id, state, name, user) fail the whole record when missing or
// mistyped; every other field degrades to absent on its own.
func Normalize(raw json.RawMessage, schema Schema) (slurmapi.Job, error) {
	if schema == Historical {
		return normalizeHistorical(raw)
	}
	return normalizeLive(raw)
}

func normalizeLive(raw json.RawMessage) (slurmapi.Job, error) {
	var w liveJob
	if err := json.Unmarshal(raw, &w); err != nil {
		return slurmapi.Job{}, &slurmapi.ParseError{Msg: "malformed live job object: " + err.Error(), Body: string(raw)}
	}
	job, err := buildRecord(w.JobID, w.Name, w.UserName, w.JobState, string(raw))
	if err != nil {
		return slurmapi.Job{}, err
	}
	job.ExitCode, job.Signal = decodeExit(w.ExitCode)
	job.SubmitTime = optFloat(w.SubmitTime)
	job.StartTime = optFloat(w.StartTime)
	job.EndTime = optFloat(w.EndTime)
	return job, nil
}

func normalizeHistorical(raw json.RawMessage) (slurmapi.Job, error) {
	var w histJob
	if err := json.Unmarshal(raw, &w); err != nil {
		return slurmapi.Job{}, &slurmapi.ParseError{Msg: "malformed historical job object: " + err.Error(), Body: string(raw)}
	}
	job, err := buildRecord(w.JobID, w.Name, w.User, w.State.Current, string(raw))
	if err != nil {
		return slurmapi.Job{}, err
	}
	job.ExitCode, job.Signal = decodeExit(w.ExitCode)
	var t histTime
	if len(w.Time) > 0 && json.Unmarshal(w.Time, &t) == nil {
		job.SubmitTime = optFloat(t.Submission)
		job.StartTime = optFloat(t.Start)
		job.EndTime = optFloat(t.End)
	}
	return job, nil
}

// buildRecord is the shared constructor both schema paths feed once their
// field extraction is done, keeping the required-field policy single-sourced.
func buildRecord(id *json.Number, name, user *string, states []string, body string) (slurmapi.Job, error) {
	switch {
	case id == nil:
		return slurmapi.Job{}, &slurmapi.ParseError{Msg: "job_id missing", Body: body}
	case name == nil:
		return slurmapi.Job{}, &slurmapi.ParseError{Msg: "name missing", Body: body}
	case user == nil:
		return slurmapi.Job{}, &slurmapi.ParseError{Msg: "user missing", Body: body}
	case len(states) == 0:
		return slurmapi.Job{}, &slurmapi.ParseError{Msg: "state missing", Body: body}
	}
	// The state array is a singleton on the wire; the first element is
	// authoritative either way.
	return slurmapi.Job{
		JobID:    id.String(),
		Name:     *name,
		UserName: *user,
		StateRaw: states[0],
	}, nil
}

func decodeExit(raw json.RawMessage) (code, signal *int) {
	if len(raw) == 0 {
		return nil, nil
	}
	var e exitInfo
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, nil
	}
	return optInt(e.ReturnCode), optInt(e.Signal.ID)
}

func optInt(v slurmapi.NoVal) *int {
	if n, ok := v.Int(); ok {
		return &n
	}
	return nil
}

func optFloat(v slurmapi.NoVal) *float64 {
	if f, ok := v.Float(); ok {
		return &f
	}
	return nil
}

// NormalizeList applies Normalize across a collection response, dropping
// malformed entries with a warning instead of failing the page.
func NormalizeList(raws []json.RawMessage, schema Schema, log logrus.FieldLogger) []slurmapi.Job {
	if log == nil {
		log = logrus.StandardLogger()
	}
	jobs := make([]slurmapi.Job, 0, len(raws))
	for i, raw := range raws {
		job, err := Normalize(raw, schema)
		if err != nil {
			log.WithFields(logrus.Fields{
				"schema": schema.String(),
				"index":  i,
				"error":  err,
			}).Warn("dropping malformed job entry")
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs
}
