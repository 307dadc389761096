package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mtelvers/go-slurm/internal/auth"
	"github.com/mtelvers/go-slurm/internal/client"
	"github.com/mtelvers/go-slurm/internal/config"
	"github.com/mtelvers/go-slurm/internal/observability"
	"github.com/mtelvers/go-slurm/internal/poll"
	"github.com/mtelvers/go-slurm/internal/scriptstore"
	"github.com/mtelvers/go-slurm/pkg/slurmapi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	if lvl, err := logrus.ParseLevel(getenv("SLURM_LOG_LEVEL", "info")); err == nil {
		logrus.SetLevel(lvl)
	}
	ctx := context.Background()
	shutdown, err := observability.Init(ctx, "slurmctl")
	if err != nil {
		fatalf("tracing init failed: %v", err)
	}
	defer shutdown(ctx)

	switch os.Args[1] {
	case "submit":
		runSubmit(ctx, os.Args[2:])
	case "status":
		runStatus(ctx, os.Args[2:])
	case "list":
		runList(ctx, os.Args[2:])
	case "history":
		runHistory(ctx, os.Args[2:])
	case "cancel":
		runCancel(ctx, os.Args[2:])
	case "wait":
		runWait(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: slurmctl <submit|status|list|history|cancel|wait> [...]")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func buildClient(ctx context.Context) (*client.Client, config.Config) {
	cfg, err := config.Load()
	if err != nil {
		fatalf("config: %v", err)
	}
	var cred auth.Credential = auth.LocalCredential{}
	if cfg.AuthMode == "token" {
		token := cfg.Token
		if token == "" {
			provider := auth.NewCommandTokenProvider(cfg.TokenCommand)
			token, err = provider.Token(ctx, cfg.UserName, cfg.TokenLifespan())
			if err != nil {
				fatalf("acquire token: %v", err)
			}
		}
		cred = auth.TokenCredential{UserName: cfg.UserName, Token: token}
	}
	return client.New(client.Config{
		BaseURL:    cfg.BaseURL,
		APIVersion: cfg.APIVersion,
		Credential: cred,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout()},
	}), cfg
}

func runSubmit(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	name := fs.String("name", "", "job name")
	script := fs.String("script", "", "script path or s3://bucket/key reference")
	account := fs.String("account", "", "account")
	partition := fs.String("partition", "", "partition")
	nodes := fs.String("nodes", "", "node count or range, e.g. 2-4")
	tasks := fs.Int("tasks", 0, "task count")
	cpus := fs.Int("cpus-per-task", 0, "cpus per task")
	memMB := fs.Int("mem-mb", 0, "memory per node in MB")
	limitMin := fs.Int("time-limit", 0, "time limit in minutes")
	env := fs.String("env", "", "comma-separated KEY=VALUE pairs")
	constraints := fs.String("constraints", "", "feature constraints")
	workdir := fs.String("chdir", "", "working directory")
	stdout := fs.String("output", "", "standard output path template")
	stderr := fs.String("error", "", "standard error path template")
	array := fs.String("array", "", "array specification")
	_ = fs.Parse(args)

	if *name == "" || *script == "" {
		fatalf("submit requires -name and -script")
	}
	c, cfg := buildClient(ctx)
	body, err := scriptstore.New(cfg.S3).Resolve(ctx, *script)
	if err != nil {
		fatalf("%v", err)
	}
	spec := slurmapi.SubmitSpec{
		Name:             *name,
		Script:           body,
		Account:          *account,
		Partition:        *partition,
		Nodes:            *nodes,
		Tasks:            *tasks,
		CPUsPerTask:      *cpus,
		MemoryPerNodeMB:  *memMB,
		TimeLimitMinutes: *limitMin,
		Environment:      parseEnv(*env),
		Constraints:      *constraints,
		WorkingDirectory: *workdir,
		StandardOutput:   *stdout,
		StandardError:    *stderr,
		Array:            *array,
	}
	jobID, err := c.Submit(ctx, spec)
	if err != nil {
		fatalf("submit: %v", err)
	}
	fmt.Println(jobID)
}

func parseEnv(raw string) []slurmapi.EnvVar {
	var out []slurmapi.EnvVar
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		out = append(out, slurmapi.EnvVar{Name: k, Value: v})
	}
	return out
}

func runStatus(ctx context.Context, args []string) {
	if len(args) < 1 {
		fatalf("usage: slurmctl status <job-id>")
	}
	c, _ := buildClient(ctx)
	job, err := c.Get(ctx, args[0])
	if err != nil {
		fatalf("status: %v", err)
	}
	printJob(job)
}

func runList(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	ids := fs.String("ids", "", "comma-separated job ids")
	_ = fs.Parse(args)
	c, _ := buildClient(ctx)
	jobs, err := c.List(ctx, splitList(*ids))
	if err != nil {
		fatalf("list: %v", err)
	}
	for _, job := range jobs {
		printJob(job)
	}
}

func runHistory(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	users := fs.String("users", "", "comma-separated user names")
	_ = fs.Parse(args)
	c, _ := buildClient(ctx)
	jobs, err := c.ListHistorical(ctx, splitList(*users))
	if err != nil {
		fatalf("history: %v", err)
	}
	for _, job := range jobs {
		printJob(job)
	}
}

func runCancel(ctx context.Context, args []string) {
	if len(args) < 1 {
		fatalf("usage: slurmctl cancel <job-id>")
	}
	c, _ := buildClient(ctx)
	if err := c.Cancel(ctx, args[0]); err != nil {
		fatalf("cancel: %v", err)
	}
	fmt.Println("cancelled", args[0])
}

func runWait(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("wait", flag.ExitOnError)
	interval := fs.Duration("interval", 0, "poll interval (default from config)")
	attempts := fs.Int("attempts", 0, "max poll attempts (default from config)")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fatalf("usage: slurmctl wait [-interval d] [-attempts n] <job-id>")
	}
	c, cfg := buildClient(ctx)
	if *interval <= 0 {
		*interval = cfg.PollInterval()
	}
	if *attempts <= 0 {
		*attempts = cfg.PollMaxAttempts
	}
	job, err := poll.Wait(ctx, c, fs.Arg(0), *interval, *attempts)
	if err != nil {
		fatalf("wait: %v", err)
	}
	printJob(job)
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func printJob(job slurmapi.Job) {
	line := fmt.Sprintf("%s\t%s\t%s\t%s", job.JobID, job.Name, job.UserName, job.State())
	if job.ExitCode != nil {
		line += fmt.Sprintf("\texit=%d", *job.ExitCode)
	}
	if job.Signal != nil {
		line += fmt.Sprintf("\tsignal=%d", *job.Signal)
	}
	if job.EndTime != nil {
		line += "\tended=" + time.Unix(int64(*job.EndTime), 0).UTC().Format(time.RFC3339)
	}
	fmt.Println(line)
}
