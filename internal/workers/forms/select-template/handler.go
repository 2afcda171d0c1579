// internal/workers/forms/select-template/handler.go
package selecttemplate

import (
	"context"
	"encoding/json"
	"strings"

	"compliance-copilot/internal/common/errors"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/common/validation"
	"compliance-copilot/internal/engine/recipes"
	"compliance-copilot/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "select-template"

type Handler struct {
	config     *Config
	templates  *registry.TemplateRegistry
	catalog    *recipes.Catalog
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, templates *registry.TemplateRegistry, catalog *recipes.Catalog, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		templates:  templates,
		catalog:    catalog,
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

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		h.errHandler.HandleJobError(ctx, client, job, errors.NewInvalidTurnFormatError(err.Error()))
		return nil
	}
	if result := validation.ValidateInput(raw, GetInputSchema()); !result.Valid {
		h.errHandler.HandleJobError(ctx, client, job,
			errors.NewInvalidTurnFormatError(strings.Join(result.GetErrorMessages(), "; ")))
		return nil
	}

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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.TemplateID == "" && input.RecipeID == "" {
		return nil, errors.NewBusinessRuleError(
			"No template selection criteria",
			"either templateId or recipeId must be provided",
		)
	}

	var ids []string
	if input.TemplateID != "" {
		ids = []string{input.TemplateID}
	} else {
		recipe, ok := h.catalog.Get(input.RecipeID)
		if !ok {
			return nil, errors.NewRecipeNotFoundError(input.RecipeID)
		}
		ids = recipe.Forms
	}

	infos := make([]TemplateInfo, 0, len(ids))
	for _, id := range ids {
		tpl := h.templates.Get(id)
		if tpl == nil {
			return nil, errors.NewTemplateNotFoundError(id)
		}
		infos = append(infos, TemplateInfo{
			ID:         tpl.ID,
			Name:       tpl.Name,
			Regulation: tpl.Regulation,
			Labels:     tpl.Labels,
		})
	}

	return &Output{Templates: infos}, nil
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
