// Package hook implements the prompt-hook boundary: one JSON payload in on
// stdin, the pass-through response out on stdout.
package hook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/mikey/english-buddy/internal/core"
	"go.uber.org/zap"
)

// Runner feeds one hook invocation through the pipeline service
type Runner struct {
	service *core.PipelineService
	logger  *zap.Logger
	in      io.Reader
	out     io.Writer
}

// NewRunner creates a runner bound to stdin and stdout
func NewRunner(service *core.PipelineService, logger *zap.Logger) *Runner {
	return NewRunnerWithIO(service, logger, os.Stdin, os.Stdout)
}

// NewRunnerWithIO creates a runner bound to explicit streams
func NewRunnerWithIO(service *core.PipelineService, logger *zap.Logger, in io.Reader, out io.Writer) *Runner {
	return &Runner{
		service: service,
		logger:  logger,
		in:      in,
		out:     out,
	}
}

// hookInput is the payload the agent hands to a prompt hook
type hookInput struct {
	Prompt     string `json:"prompt"`
	UserPrompt string `json:"user_prompt"`
}

// Run processes a single invocation. The empty JSON object on stdout tells
// the caller to let the prompt through untouched; it is written no matter
// what happens inside the pipeline, so the hook can never block the user.
func (r *Runner) Run(ctx context.Context) error {
	defer fmt.Fprintln(r.out, "{}")

	logger := r.logger.With(zap.String("invocation_id", uuid.NewString()))

	data, err := io.ReadAll(r.in)
	if err != nil {
		logger.Error("Failed to read hook input", zap.Error(err))
		return nil
	}

	var input hookInput
	if err := json.Unmarshal(data, &input); err != nil {
		logger.Error("Failed to decode hook input", zap.Error(err))
		return nil
	}

	prompt := input.Prompt
	if prompt == "" {
		prompt = input.UserPrompt
	}
	if prompt == "" {
		logger.Debug("Hook input carried no prompt")
		return nil
	}

	outcome, _, err := r.service.ProcessPrompt(ctx, prompt)
	if err != nil {
		logger.Warn("Pipeline finished with an error",
			zap.String("outcome", string(outcome)), zap.Error(err))
		return nil
	}

	logger.Debug("Processed prompt", zap.String("outcome", string(outcome)))
	return nil
}
