package anthropic

import (
	"errors"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/rs/zerolog"

	"github.com/conduitml/conduit/model"
)

// ConvertError maps an Anthropic SDK error onto the shared provider error
// taxonomy, preserving the HTTP status code when one is present.
func ConvertError(err error, modelName, modelID string, logger zerolog.Logger) error {
	if err == nil {
		return nil
	}

	logger.Error().Err(err).Msg("Anthropic API error")

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return model.NewStatusError(apiErr.StatusCode, apiErr.Error(), modelName, modelID, err)
	}

	return model.NewProviderError(err.Error(), modelName, modelID, err)
}
