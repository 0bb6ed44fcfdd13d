package openaichat

import (
	"errors"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/conduitml/conduit/model"
)

// ConvertError translates a go-openai failure into a *model.ProviderError.
// Status errors keep the HTTP status code and response text, API errors keep
// the message, and anything else is stringified. The original error is logged
// at error severity before translation and stays reachable via Unwrap.
func ConvertError(err error, modelName, modelID string, logger zerolog.Logger) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		logger.Error().Err(err).Msg("Error calling provider API")
		if apiErr.HTTPStatusCode > 0 {
			return model.NewStatusError(apiErr.HTTPStatusCode, apiErr.Message, modelName, modelID, err)
		}
		return model.NewProviderError(apiErr.Message, modelName, modelID, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		logger.Error().Err(err).Msg("Error calling provider API")
		message := string(reqErr.Body)
		if message == "" {
			message = reqErr.Error()
		}
		return model.NewStatusError(reqErr.HTTPStatusCode, message, modelName, modelID, err)
	}

	logger.Error().Err(err).Msg("Unexpected error calling provider API")
	return model.NewProviderError(err.Error(), modelName, modelID, err)
}

func (a *Adapter) convertError(err error) error {
	return ConvertError(err, a.name, a.id, a.logger)
}
