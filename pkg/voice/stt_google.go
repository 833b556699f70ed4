package voice

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

// sampleRateHertz is the expected STT input sample rate (§4.10: 24kHz mono).
const sampleRateHertz = 24000

// sttBackend abstracts the speech-to-text vendor call so voice.Client can
// be tested without a live Google Cloud credential.
type sttBackend interface {
	Recognize(ctx context.Context, audio []byte, inputFormat string) (string, error)
	StreamingRecognize(ctx context.Context) (streamSession, error)
}

// streamSession is one stt_stream session: callers push audio chunks and
// pull back partial/final transcripts.
type streamSession interface {
	Send(chunk []byte, isFinal bool) error
	Recv() (text string, done bool, err error)
	Close() error
}

type googleSTTBackend struct {
	client *speech.Client
}

func newGoogleSTTBackend(ctx context.Context, apiKey string) (*googleSTTBackend, error) {
	client, err := speech.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &googleSTTBackend{client: client}, nil
}

func encodingFor(inputFormat string) speechpb.RecognitionConfig_AudioEncoding {
	switch inputFormat {
	case "wav":
		return speechpb.RecognitionConfig_LINEAR16
	case "opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_LINEAR16
	}
}

func (b *googleSTTBackend) Recognize(ctx context.Context, audio []byte, inputFormat string) (string, error) {
	resp, err := b.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encodingFor(inputFormat),
			SampleRateHertz: sampleRateHertz,
			LanguageCode:    "en-US",
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("speech recognize failed: %w", err)
	}

	var b2 strings.Builder
	for i, result := range resp.Results {
		if i > 0 {
			b2.WriteString(" ")
		}
		if len(result.Alternatives) > 0 {
			b2.WriteString(result.Alternatives[0].Transcript)
		}
	}
	return b2.String(), nil
}

// googleStreamSession wraps the bidirectional StreamingRecognize RPC.
type googleStreamSession struct {
	stream speechpb.Speech_StreamingRecognizeClient
}

func (b *googleSTTBackend) StreamingRecognize(ctx context.Context) (streamSession, error) {
	stream, err := b.client.StreamingRecognize(ctx)
	if err != nil {
		return nil, err
	}

	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz: sampleRateHertz,
					LanguageCode:    "en-US",
				},
			},
		},
	}); err != nil {
		return nil, err
	}

	return &googleStreamSession{stream: stream}, nil
}

func (s *googleStreamSession) Send(chunk []byte, isFinal bool) error {
	return s.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{AudioContent: chunk},
	})
}

func (s *googleStreamSession) Recv() (string, bool, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		return "", true, err
	}
	var text string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			text = result.Alternatives[0].Transcript
		}
	}
	return text, false, nil
}

func (s *googleStreamSession) Close() error {
	return s.stream.CloseSend()
}
