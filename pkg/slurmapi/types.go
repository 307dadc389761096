// Package slurmapi holds the canonical job model and the wire types exchanged
// with slurmrestd's /slurm (live scheduler) and /slurmdb (accounting) APIs.
package slurmapi

import (
	"encoding/json"
	"fmt"
)

// Job is the canonical, schema-independent job record. JobID and Name are
// always present; every other field is populated only once the corresponding
// lifecycle event has happened on the scheduler side.
type Job struct {
	JobID      string
	Name       string
	UserName   string
	StateRaw   string
	ExitCode   *int
	Signal     *int
	SubmitTime *float64
	StartTime  *float64
	EndTime    *float64
}

// State classifies the raw state token. Derived on demand so the record never
// carries two copies of the same fact.
func (j Job) State() State {
	return Classify(j.StateRaw)
}

// EnvVar is one environment entry for a submitted job.
type EnvVar struct {
	Name  string
	Value string
}

// SubmitSpec describes one job submission. Zero-valued optional fields are
// omitted from the wire payload entirely, never sent as null.
type SubmitSpec struct {
	Name             string
	Script           string
	Account          string
	Partition        string
	Nodes            string // string so ranges like "2-4" pass through
	Tasks            int
	CPUsPerTask      int
	MemoryPerNodeMB  int
	TimeLimitMinutes int
	Environment      []EnvVar
	Constraints      string
	WorkingDirectory string
	StandardOutput   string
	StandardError    string
	Array            string
}

// SubmitJobProperties is the "job" object of the submission payload.
type SubmitJobProperties struct {
	Name                    string   `json:"name"`
	Account                 string   `json:"account,omitempty"`
	Partition               string   `json:"partition,omitempty"`
	Nodes                   string   `json:"nodes,omitempty"`
	Tasks                   int      `json:"tasks,omitempty"`
	CPUsPerTask             int      `json:"cpus_per_task,omitempty"`
	MemoryPerNode           int      `json:"memory_per_node,omitempty"`
	TimeLimit               *NoVal   `json:"time_limit,omitempty"`
	Environment             []string `json:"environment,omitempty"`
	Constraints             string   `json:"constraints,omitempty"`
	CurrentWorkingDirectory string   `json:"current_working_directory,omitempty"`
	StandardOutput          string   `json:"standard_output,omitempty"`
	StandardError           string   `json:"standard_error,omitempty"`
	Array                   string   `json:"array,omitempty"`
}

// SubmitRequest is the POST /slurm/{ver}/job/submit body.
type SubmitRequest struct {
	Script string              `json:"script"`
	Job    SubmitJobProperties `json:"job"`
}

// SubmitResponse carries the scheduler-assigned id of an accepted job.
type SubmitResponse struct {
	JobID *json.Number `json:"job_id"`
}

// JobsResponse is the shared list envelope of both endpoints. Entries stay
// raw because the two schemas are normalized per element.
type JobsResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

// Payload builds the wire-level submission request for s.
func (s SubmitSpec) Payload() SubmitRequest {
	job := SubmitJobProperties{
		Name:                    s.Name,
		Account:                 s.Account,
		Partition:               s.Partition,
		Nodes:                   s.Nodes,
		Tasks:                   s.Tasks,
		CPUsPerTask:             s.CPUsPerTask,
		MemoryPerNode:           s.MemoryPerNodeMB,
		Constraints:             s.Constraints,
		CurrentWorkingDirectory: s.WorkingDirectory,
		StandardOutput:          s.StandardOutput,
		StandardError:           s.StandardError,
		Array:                   s.Array,
	}
	if s.TimeLimitMinutes > 0 {
		limit := NewNoVal(s.TimeLimitMinutes)
		job.TimeLimit = &limit
	}
	for _, e := range s.Environment {
		job.Environment = append(job.Environment, fmt.Sprintf("%s=%s", e.Name, e.Value))
	}
	return SubmitRequest{Script: s.Script, Job: job}
}
