// internal/workers/esg/suggest-load-shift/handler.go
package suggestloadshift

import (
	"context"
	"encoding/json"

	"compliance-copilot/internal/common/errors"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/common/weather"
	"compliance-copilot/internal/engine/esg"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "suggest-load-shift"

type Handler struct {
	config     *Config
	weather    *weather.Client
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, weatherClient *weather.Client, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		weather:    weatherClient,
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
	var insight *weather.Insight
	if input.City != "" {
		var err error
		insight, err = h.weather.Fetch(ctx, input.City, input.Country)
		if err != nil {
			// Fetch already degraded to the offline insight; the error is
			// only informational.
			h.logger.Warn("weather lookup degraded to offline estimates", map[string]interface{}{
				"city":  input.City,
				"error": err.Error(),
			})
		}
	}

	advice := esg.SuggestLoadShift(input.KWhProfile, insight)

	output := &Output{
		Recommendations:  advice.Recommendations,
		PotentialSavings: advice.PotentialSavings,
		BestTimeSlots:    advice.BestTimeSlots,
	}
	if insight != nil {
		output.SunHours = insight.SunHours
		output.WeatherSource = insight.Source
	}
	return output, nil
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
