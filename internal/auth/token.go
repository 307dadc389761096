package auth

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mtelvers/go-slurm/pkg/slurmapi"
)

const (
	tokenLinePrefix = "SLURM_JWT="
	defaultLifespan = time.Hour
)

// TokenProvider issues a short-lived token for a user. Abstracted so header
// injection is testable without spawning any process.
type TokenProvider interface {
	Token(ctx context.Context, userName string, lifespan time.Duration) (string, error)
}

// CommandRunner executes one command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// CommandTokenProvider shells out to scontrol for a JWT and scans the output
// for the SLURM_JWT= line.
type CommandTokenProvider struct {
	Command string
	Run     CommandRunner
}

func NewCommandTokenProvider(command string) *CommandTokenProvider {
	if command == "" {
		command = "scontrol"
	}
	return &CommandTokenProvider{Command: command, Run: runCommand}
}

func (p *CommandTokenProvider) Token(ctx context.Context, userName string, lifespan time.Duration) (string, error) {
	if lifespan <= 0 {
		lifespan = defaultLifespan
	}
	run := p.Run
	if run == nil {
		run = runCommand
	}
	args := []string{
		"token",
		"username=" + userName,
		fmt.Sprintf("lifespan=%d", int(lifespan.Seconds())),
	}
	out, err := run(ctx, p.Command, args...)
	if err != nil {
		return "", &slurmapi.TokenError{Output: string(out), Err: err}
	}
	token, ok := parseTokenOutput(string(out))
	if !ok {
		return "", &slurmapi.TokenError{Output: string(out)}
	}
	return token, nil
}

func parseTokenOutput(out string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if token, ok := strings.CutPrefix(line, tokenLinePrefix); ok && token != "" {
			return token, true
		}
	}
	return "", false
}
