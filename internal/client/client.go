// Package client is the job-control surface of slurmrestd: submit, get,
// list, cancel against the live scheduler, plus accounting-database listing.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mtelvers/go-slurm/internal/auth"
	"github.com/mtelvers/go-slurm/internal/normalize"
	"github.com/mtelvers/go-slurm/internal/observability"
	"github.com/mtelvers/go-slurm/pkg/slurmapi"
)

// DefaultAPIVersion tracks the slurmrestd plugin version this client targets.
const DefaultAPIVersion = "v0.0.38"

// Doer is the transport capability the client needs. *http.Client satisfies
// it; tests swap in anything that can answer a request.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config is the immutable per-client configuration. The client keeps no other
// state, so one instance is safe for concurrent calls.
type Config struct {
	BaseURL    string
	APIVersion string
	Credential auth.Credential
	HTTPClient Doer
	Logger     logrus.FieldLogger
}

type Client struct {
	baseURL string
	version string
	cred    auth.Credential
	http    Doer
	log     logrus.FieldLogger
}

func New(cfg Config) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		version: cfg.APIVersion,
		cred:    cfg.Credential,
		http:    cfg.HTTPClient,
		log:     cfg.Logger,
	}
	if c.version == "" {
		c.version = DefaultAPIVersion
	}
	if c.cred == nil {
		c.cred = auth.LocalCredential{}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	return c
}

func (c *Client) liveURL(parts ...string) string {
	return c.baseURL + "/slurm/" + c.version + "/" + strings.Join(parts, "/")
}

func (c *Client) historyURL(parts ...string) string {
	return c.baseURL + "/slurmdb/" + c.version + "/" + strings.Join(parts, "/")
}

// Submit posts the job described by spec and returns the scheduler-assigned
// id. The wire id is numeric; it comes back in canonical string form so job
// identifiers stay one type across the API.
func (c *Client) Submit(ctx context.Context, spec slurmapi.SubmitSpec) (string, error) {
	ctx, span := observability.StartSpan(ctx, "slurm.submit",
		attribute.String("slurm.job_name", spec.Name))
	defer span.End()

	body, err := json.Marshal(spec.Payload())
	if err != nil {
		return "", recordErr(span, &slurmapi.ParseError{Msg: "encode submit payload: " + err.Error()})
	}
	respBody, err := c.do(ctx, http.MethodPost, c.liveURL("job", "submit"), body)
	if err != nil {
		return "", recordErr(span, err)
	}
	var resp slurmapi.SubmitResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", recordErr(span, &slurmapi.ParseError{Msg: "submit response: " + err.Error(), Body: string(respBody)})
	}
	if resp.JobID == nil {
		return "", recordErr(span, &slurmapi.ParseError{Msg: "submit response carried no job_id", Body: string(respBody)})
	}
	return resp.JobID.String(), nil
}

// Get fetches a single job from the live endpoint. An empty jobs array is a
// NotFoundError; duplicates should not happen but the first entry wins if
// they do.
func (c *Client) Get(ctx context.Context, jobID string) (slurmapi.Job, error) {
	ctx, span := observability.StartSpan(ctx, "slurm.get",
		attribute.String("slurm.job_id", jobID))
	defer span.End()

	body, err := c.do(ctx, http.MethodGet, c.liveURL("job", jobID), nil)
	if err != nil {
		return slurmapi.Job{}, recordErr(span, err)
	}
	raws, err := decodeJobs(body)
	if err != nil {
		return slurmapi.Job{}, recordErr(span, err)
	}
	if len(raws) == 0 {
		return slurmapi.Job{}, recordErr(span, &slurmapi.NotFoundError{JobID: jobID})
	}
	job, err := normalize.Normalize(raws[0], normalize.Live)
	if err != nil {
		return slurmapi.Job{}, recordErr(span, err)
	}
	return job, nil
}

// List fetches jobs from the live endpoint, optionally restricted to ids.
// Malformed entries are dropped, not surfaced; only a transport failure or an
// unreadable body is an error.
func (c *Client) List(ctx context.Context, ids []string) ([]slurmapi.Job, error) {
	ctx, span := observability.StartSpan(ctx, "slurm.list",
		attribute.Int("slurm.id_filter_len", len(ids)))
	defer span.End()

	u := c.liveURL("jobs")
	if len(ids) > 0 {
		u += "?job_id=" + url.QueryEscape(strings.Join(ids, ","))
	}
	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, recordErr(span, err)
	}
	raws, err := decodeJobs(body)
	if err != nil {
		return nil, recordErr(span, err)
	}
	return normalize.NormalizeList(raws, normalize.Live, c.log), nil
}

// ListHistorical fetches jobs from the accounting database, optionally
// restricted to users, with the same drop-malformed policy as List.
func (c *Client) ListHistorical(ctx context.Context, users []string) ([]slurmapi.Job, error) {
	ctx, span := observability.StartSpan(ctx, "slurm.list_historical",
		attribute.Int("slurm.user_filter_len", len(users)))
	defer span.End()

	u := c.historyURL("jobs")
	if len(users) > 0 {
		u += "?users=" + url.QueryEscape(strings.Join(users, ","))
	}
	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, recordErr(span, err)
	}
	raws, err := decodeJobs(body)
	if err != nil {
		return nil, recordErr(span, err)
	}
	return normalize.NormalizeList(raws, normalize.Historical, c.log), nil
}

// Cancel asks the scheduler to delete a job. Success is judged by HTTP
// status alone; the body is discarded.
func (c *Client) Cancel(ctx context.Context, jobID string) error {
	ctx, span := observability.StartSpan(ctx, "slurm.cancel",
		attribute.String("slurm.job_id", jobID))
	defer span.End()

	_, err := c.do(ctx, http.MethodDelete, c.liveURL("job", jobID), nil)
	if err != nil {
		return recordErr(span, err)
	}
	return nil
}

// recordErr annotates the active span so traces distinguish scheduler
// rejections from unreadable responses and missing jobs.
func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	return err
}

// do issues one request and returns the response body for any 2xx status.
// No retries: transient failures surface immediately and retry policy stays a
// caller concern.
func (c *Client) do(ctx context.Context, method, u string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, &slurmapi.TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.cred.Apply(req.Header)

	requestID := uuid.NewString()
	log := c.log.WithFields(logrus.Fields{
		"method":     method,
		"url":        u,
		"request_id": requestID,
	})
	log.Debug("slurm request")

	resp, err := c.http.Do(req)
	if err != nil {
		log.WithField("error", err).Warn("slurm request failed")
		return nil, &slurmapi.TransportError{Err: err}
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &slurmapi.TransportError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(respBody),
		}).Warn("slurm request rejected")
		return nil, &slurmapi.TransportError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

func decodeJobs(body []byte) ([]json.RawMessage, error) {
	var resp slurmapi.JobsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &slurmapi.ParseError{Msg: "jobs response: " + err.Error(), Body: string(body)}
	}
	return resp.Jobs, nil
}
