package greeting

import (
	"context"
	"errors"
	"fmt"

	"facegreeter/internal/config"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

// Synthesizer turns greeting text into MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Close() error
}

// GoogleTTS uses Google Cloud Text-to-Speech. Credentials come from GOOGLE_APPLICATION_CREDENTIALS.
type GoogleTTS struct {
	client       *texttospeech.Client
	languageCode string
	voice        string
}

func NewGoogleTTS(ctx context.Context, cfg config.TTSConfig) (*GoogleTTS, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	return &GoogleTTS{client: client, languageCode: cfg.LanguageCode, voice: cfg.Voice}, nil
}

func (t *GoogleTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := t.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: t.languageCode,
			Name:         t.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	if len(resp.AudioContent) == 0 {
		return nil, errors.New("speech synthesis returned no audio")
	}
	return resp.AudioContent, nil
}

func (t *GoogleTTS) Close() error {
	return t.client.Close()
}
