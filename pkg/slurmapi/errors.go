package slurmapi

import "fmt"

// TransportError is a connection failure or a non-2xx HTTP response.
// StatusCode is 0 when the request never reached the server.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("slurm: request failed: %v", e.Err)
	}
	return fmt.Sprintf("slurm: request failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError is a response body that could not be read into the expected
// shape: malformed JSON, or a missing/mistyped required field. Body keeps the
// raw text for postmortem.
type ParseError struct {
	Msg  string
	Body string
}

func (e *ParseError) Error() string {
	return "slurm: parse response: " + e.Msg
}

// NotFoundError means a get-by-id returned zero matching records. Distinct
// from ParseError so callers can branch on "job doesn't exist" versus
// "response unreadable".
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	return "slurm: job " + e.JobID + " not found"
}

// TokenError means the token-issuing command failed or its output carried no
// token line. Output keeps whatever the command printed.
type TokenError struct {
	Output string
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("slurm: token command failed: %v", e.Err)
	}
	return "slurm: token command output carried no SLURM_JWT line"
}

func (e *TokenError) Unwrap() error { return e.Err }
