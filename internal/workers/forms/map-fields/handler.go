// internal/workers/forms/map-fields/handler.go
package mapfields

import (
	"context"
	"encoding/json"

	"compliance-copilot/internal/common/errors"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/common/metrics"
	"compliance-copilot/internal/engine/fieldmap"
	"compliance-copilot/internal/engine/submission"
	"compliance-copilot/internal/models"
	"compliance-copilot/internal/profile"
	"compliance-copilot/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "map-fields"

type Handler struct {
	config     *Config
	mapper     *fieldmap.Mapper
	store      submission.Store
	profiles   *profile.Store
	templates  *registry.TemplateRegistry
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

// NewHandler wires the field mapper to its value sources. The profile
// store may be nil when no profile database is configured, and the
// template registry may be nil when labels always arrive inline.
func NewHandler(config *Config, mapper *fieldmap.Mapper, store submission.Store, profiles *profile.Store, templates *registry.TemplateRegistry, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		mapper:     mapper,
		store:      store,
		profiles:   profiles,
		templates:  templates,
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
	labels := input.Labels
	if len(labels) == 0 && input.FormID != "" && h.templates != nil {
		tpl := h.templates.Get(input.FormID)
		if tpl == nil {
			return nil, errors.NewTemplateNotFoundError(input.FormID)
		}
		labels = tpl.Labels
	}
	if len(labels) == 0 {
		return nil, errors.NewBusinessRuleError("No field labels to map", "labels must not be empty")
	}

	sub, err := h.store.Get(ctx, input.SubmissionID)
	if err != nil {
		return nil, err
	}

	var prof models.Profile
	if h.profiles != nil && input.UserID != "" {
		prof, err = h.profiles.Get(ctx, input.UserID)
		if err != nil {
			// Profile enrichment is best effort; slots alone still map.
			h.logger.Warn("profile lookup failed, mapping from slots only", map[string]interface{}{
				"userId": input.UserID,
				"error":  err.Error(),
			})
			prof = nil
		}
	}

	valueStore := fieldmap.BuildValueStore(sub.Slots, prof)
	mapping := h.mapper.Map(ctx, labels, valueStore)

	for range mapping.LowConfidence {
		metrics.FieldMapLowConfidence.WithLabelValues(input.FormID).Inc()
	}

	return &Output{
		FormID:        input.FormID,
		Assignments:   mapping.Assignments,
		Values:        mapping.Values(),
		LowConfidence: mapping.LowConfidence,
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
