package ollama

import (
	"errors"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"

	"github.com/conduitml/conduit/model"
)

// ConvertError maps a native client error onto the shared provider error
// taxonomy, preserving the HTTP status code when one is present.
func ConvertError(err error, modelName, modelID string, logger zerolog.Logger) error {
	if err == nil {
		return nil
	}

	logger.Error().Err(err).Msg("Ollama API error")

	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return model.NewStatusError(statusErr.StatusCode, statusErr.ErrorMessage, modelName, modelID, err)
	}

	return model.NewProviderError(err.Error(), modelName, modelID, err)
}
