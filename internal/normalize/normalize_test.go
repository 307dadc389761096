package normalize

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/mtelvers/go-slurm/pkg/slurmapi"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNormalizeLiveRunningJob(t *testing.T) {
	raw := json.RawMessage(`{
		"job_id": 4242,
		"name": "simulate",
		"user_name": "mte",
		"job_state": ["RUNNING"],
		"submit_time": {"number": 1700000000, "set": true, "infinite": false},
		"start_time": {"number": 1700000060, "set": true, "infinite": false},
		"end_time": {"number": 0, "set": false, "infinite": false}
	}`)
	job, err := Normalize(raw, Live)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.JobID != "4242" || job.Name != "simulate" || job.UserName != "mte" {
		t.Fatalf("required fields wrong: %+v", job)
	}
	if job.StateRaw != "RUNNING" || job.State() != slurmapi.StateRunning {
		t.Fatalf("state = %q", job.StateRaw)
	}
	if job.ExitCode != nil || job.Signal != nil || job.EndTime != nil {
		t.Fatalf("fields a running job cannot have were populated: %+v", job)
	}
	if job.SubmitTime == nil || *job.SubmitTime != 1700000000 {
		t.Fatalf("submit time = %v", job.SubmitTime)
	}
	if job.StartTime == nil || *job.StartTime != 1700000060 {
		t.Fatalf("start time = %v", job.StartTime)
	}
}

func TestNormalizeHistoricalZeroExitCode(t *testing.T) {
	raw := json.RawMessage(`{
		"job_id": 17,
		"name": "archive",
		"user": "ops",
		"state": {"current": ["COMPLETED"]},
		"exit_code": {
			"return_code": {"number": 0, "set": true, "infinite": false},
			"signal": {"id": {"number": 0, "set": false, "infinite": false}}
		},
		"time": {
			"submission": {"number": 1700000000, "set": true, "infinite": false},
			"start": {"number": 1700000100, "set": true, "infinite": false},
			"end": {"number": 1700000500.5, "set": true, "infinite": false}
		}
	}`)
	job, err := Normalize(raw, Historical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.UserName != "ops" {
		t.Fatalf("user field not renamed: %+v", job)
	}
	if job.State() != slurmapi.StateCompleted {
		t.Fatalf("state = %q", job.StateRaw)
	}
	if job.ExitCode == nil || *job.ExitCode != 0 {
		t.Fatalf("zero exit code must not read as absent: %v", job.ExitCode)
	}
	if job.Signal != nil {
		t.Fatalf("unset signal decoded as %v", *job.Signal)
	}
	if job.EndTime == nil || *job.EndTime != 1700000500.5 {
		t.Fatalf("end time = %v", job.EndTime)
	}
}

func TestNormalizeMissingRequiredField(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		schema Schema
	}{
		{"live missing name", `{"job_id": 1, "user_name": "a", "job_state": ["PENDING"]}`, Live},
		{"live missing state", `{"job_id": 1, "name": "x", "user_name": "a"}`, Live},
		{"live empty state array", `{"job_id": 1, "name": "x", "user_name": "a", "job_state": []}`, Live},
		{"live mistyped id", `{"job_id": true, "name": "x", "user_name": "a", "job_state": ["PENDING"]}`, Live},
		{"historical missing user", `{"job_id": 1, "name": "x", "state": {"current": ["COMPLETED"]}}`, Historical},
		{"not json", `{{`, Live},
	}
	for _, tc := range cases {
		_, err := Normalize(json.RawMessage(tc.raw), tc.schema)
		var parseErr *slurmapi.ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("%s: got %v, want ParseError", tc.name, err)
		}
		if parseErr.Body == "" {
			t.Fatalf("%s: ParseError dropped the raw body", tc.name)
		}
	}
}

func TestNormalizeOptionalFieldsDegradeIndividually(t *testing.T) {
	// Broken exit_code and time objects must not block the rest of the record.
	raw := json.RawMessage(`{
		"job_id": 9,
		"name": "flaky",
		"user": "ops",
		"state": {"current": ["FAILED"]},
		"exit_code": "boom",
		"time": 12
	}`)
	job, err := Normalize(raw, Historical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.ExitCode != nil || job.SubmitTime != nil || job.EndTime != nil {
		t.Fatalf("malformed optionals should be absent: %+v", job)
	}
	if job.State() != slurmapi.StateFailed {
		t.Fatalf("state = %q", job.StateRaw)
	}
}

func TestNormalizeListDropsMalformedEntries(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"job_id": 1, "name": "good", "user_name": "a", "job_state": ["PENDING"]}`),
		json.RawMessage(`{"name": "no id", "user_name": "a", "job_state": ["PENDING"]}`),
	}
	jobs := NormalizeList(raws, Live, quietLogger())
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	if jobs[0].Name != "good" {
		t.Fatalf("kept the wrong entry: %+v", jobs[0])
	}
}

func TestNormalizerDoesNotAlterStateToken(t *testing.T) {
	// Classifying the extracted token must equal classifying it in isolation.
	for _, token := range []string{"CANCELLED+", "OOM", "FUTURE_STATE"} {
		raw, _ := json.Marshal(map[string]any{
			"job_id":    3,
			"name":      "x",
			"user_name": "a",
			"job_state": []string{token},
		})
		job, err := Normalize(raw, Live)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.State() != slurmapi.Classify(token) {
			t.Fatalf("token %q classified as %q via record, %q directly", token, job.State(), slurmapi.Classify(token))
		}
	}
}
