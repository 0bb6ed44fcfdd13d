package openaichat

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/conduitml/conduit/media"
	"github.com/conduitml/conduit/model"
)

// DefaultAudioFormat is assumed when no file format is supplied or inferable.
const DefaultAudioFormat = "mp3"

// Transcribe resolves an audio value to raw bytes and transcribes it.
// Resolution prefers embedded bytes, then URL content, then a local file
// path; a missing file fails with the underlying not-exist error before any
// network call is made.
func (a *Adapter) Transcribe(ctx context.Context, audio media.Audio, opts model.TranscriptionOptions) (string, error) {
	data, err := audio.Bytes()
	if err != nil {
		return "", err
	}
	if opts.FileFormat == "" {
		opts.FileFormat = audio.FileFormat(DefaultAudioFormat)
	}
	return a.TranscribeBytes(ctx, data, opts)
}

// TranscribeFirst transcribes the first element of an audio attachment list.
func (a *Adapter) TranscribeFirst(ctx context.Context, audio []media.Audio, opts model.TranscriptionOptions) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio given: %w", media.ErrUnprocessable)
	}
	return a.Transcribe(ctx, audio[0], opts)
}

// TranscribeBytes implements model.Transcriber against the provider's
// transcription endpoint. Output is plain text by default.
func (a *Adapter) TranscribeBytes(ctx context.Context, audio []byte, opts model.TranscriptionOptions) (string, error) {
	transcriptionModel := opts.Model
	if transcriptionModel == "" {
		transcriptionModel = a.transcriptionModel
	}
	if transcriptionModel == "" {
		transcriptionModel = openai.Whisper1
	}

	fileFormat := opts.FileFormat
	if fileFormat == "" {
		fileFormat = DefaultAudioFormat
	}

	responseFormat := openai.AudioResponseFormatText
	if opts.ResponseFormat != "" {
		responseFormat = openai.AudioResponseFormat(opts.ResponseFormat)
	}

	req := openai.AudioRequest{
		Model:    transcriptionModel,
		FilePath: "audio." + fileFormat,
		Reader:   bytes.NewReader(audio),
		Format:   responseFormat,
		Language: opts.Language,
		Prompt:   opts.Prompt,
	}
	if opts.Temperature != nil {
		req.Temperature = float32(*opts.Temperature)
	}

	resp, err := a.apiClient().CreateTranscription(ctx, req)
	if err != nil {
		return "", a.convertError(err)
	}
	return resp.Text, nil
}
