// internal/workers/conversation/ingest-turn/handler.go
package ingestturn

import (
	"context"
	"encoding/json"
	"strings"

	"compliance-copilot/internal/common/errors"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/engine/submission"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "ingest-turn"

type Handler struct {
	config     *Config
	manager    *submission.Manager
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, manager *submission.Manager, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		manager:    manager,
		errHandler: errors.NewErrorHandler(log),
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errHandler.HandleJobError(ctx, client, job, errors.NewInvalidTurnFormatError(err.Error()))
		return nil
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return nil
	}

	h.completeJob(client, job, output)
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, errors.NewInvalidTurnFormatError("text must not be empty")
	}

	result, err := h.manager.IngestTurn(ctx, input.SubmissionID, input.UserID, input.Text)
	if err != nil {
		return nil, err
	}

	sub, err := h.manager.Get(ctx, result.SubmissionID)
	if err != nil {
		return nil, err
	}

	return &Output{
		SubmissionID:       result.SubmissionID,
		Stage:              string(result.Stage),
		Intent:             string(result.Intent),
		RecipeID:           result.RecipeID,
		Confidence:         result.Confidence,
		Slots:              sub.Slots,
		MissingSlots:       result.MissingSlots,
		MissingSlotPrompts: result.MissingSlotPrompts,
		IntentConflict:     result.IntentConflict,
	}, nil
}

// Execute exposes the business logic for tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
