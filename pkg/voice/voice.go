// Package voice implements the Voice Client: text-to-speech and
// speech-to-text over a configured vendor endpoint, plus WAV-aware
// timestamp synthesis for subtitle playback.
package voice

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-audio/wav"

	"github.com/opencity/insight/pkg/apperror"
	"github.com/opencity/insight/pkg/config"
)

// ttsTimeout bounds a tts/tts_with_timestamps call end to end.
const ttsTimeout = 60 * time.Second

// validFormats enumerates the audio formats VC accepts.
var validFormats = map[string]bool{"wav": true, "pcm": true, "opus": true}

// Timestamp is one word-level boundary in a TTS response, used by the UI
// to reveal subtitle text as the playhead advances.
type Timestamp struct {
	Text   string  `json:"text"`
	StartS float64 `json:"start_s"`
	StopS  float64 `json:"stop_s"`
}

// TimestampResult is the tts_with_timestamps response payload.
type TimestampResult struct {
	AudioBase64 string      `json:"audio_base64"`
	Timestamps  []Timestamp `json:"timestamps"`
}

// Client backs TTS over a configured REST endpoint and STT over Google
// Cloud Speech-to-Text. A nil Client (via New returning ok=false) means
// voice is disabled: callers must respond 503.
type Client struct {
	cfg        config.VoiceProviderConfig
	httpClient *http.Client
	stt        sttBackend
}

// New builds a Client from cfg. ok is false when cfg.APIKey is empty,
// signaling voice is disabled for this deployment.
func New(ctx context.Context, cfg config.VoiceProviderConfig) (client *Client, ok bool, err error) {
	if cfg.APIKey == "" {
		return nil, false, nil
	}

	backend, err := newGoogleSTTBackend(ctx, cfg.APIKey)
	if err != nil {
		return nil, false, fmt.Errorf("voice client: failed to initialize speech backend: %w", err)
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: ttsTimeout},
		stt:        backend,
	}, true, nil
}

func validateFormat(format string) error {
	if !validFormats[format] {
		return apperror.UnsupportedFormat(format)
	}
	return nil
}

// TTS synthesizes text to audio bytes in the requested format.
func (c *Client) TTS(ctx context.Context, text, voiceID, format string) ([]byte, error) {
	if err := validateFormat(format); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, ttsTimeout)
	defer cancel()

	body, _ := json.Marshal(map[string]string{"text": text, "voice_id": voiceID, "format": format})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TTSEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts request returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// TTSStream synthesizes text and streams the resulting audio as it
// arrives from the vendor endpoint, one chunk per read.
func (c *Client) TTSStream(ctx context.Context, text, voiceID, format string) (<-chan []byte, <-chan error) {
	chunks := make(chan []byte)
	errc := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errc)

		if err := validateFormat(format); err != nil {
			errc <- err
			return
		}

		ctx, cancel := context.WithTimeout(ctx, ttsTimeout)
		defer cancel()

		body, _ := json.Marshal(map[string]string{"text": text, "voice_id": voiceID, "format": format})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TTSEndpoint+"/stream", bytes.NewReader(body))
		if err != nil {
			errc <- err
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			errc <- fmt.Errorf("tts stream request failed: %w", err)
			return
		}
		defer resp.Body.Close()

		buf := make([]byte, 4096)
		reader := bufio.NewReader(resp.Body)
		for {
			n, readErr := reader.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					errc <- ctx.Err()
					return
				}
			}
			if readErr != nil {
				if readErr != io.EOF {
					errc <- readErr
				}
				return
			}
		}
	}()

	return chunks, errc
}

// TTSWithTimestamps synthesizes text and derives word-level timestamps by
// measuring the resulting audio's duration and distributing it evenly
// across words, preserving their original order.
func (c *Client) TTSWithTimestamps(ctx context.Context, text, voiceID, format string) (TimestampResult, error) {
	audio, err := c.TTS(ctx, text, voiceID, format)
	if err != nil {
		return TimestampResult{}, err
	}

	duration, err := audioDuration(audio, format)
	if err != nil {
		return TimestampResult{}, err
	}

	words := strings.Fields(text)
	timestamps := wordTimestamps(words, duration)

	return TimestampResult{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		Timestamps:  timestamps,
	}, nil
}

// wordTimestamps divides duration evenly across words, in order. Word i's
// start is always >= word i-1's start, and each word's stop >= its start.
func wordTimestamps(words []string, duration time.Duration) []Timestamp {
	if len(words) == 0 {
		return nil
	}
	total := duration.Seconds()
	per := total / float64(len(words))

	out := make([]Timestamp, len(words))
	for i, w := range words {
		start := per * float64(i)
		stop := start + per
		out[i] = Timestamp{Text: w, StartS: start, StopS: stop}
	}
	return out
}

// audioDuration measures playback duration from the encoded audio bytes.
// For wav it decodes the header via go-audio/wav; pcm/opus durations are
// estimated from a fixed 24kHz mono assumption since no container header
// carries sample count.
func audioDuration(audio []byte, format string) (time.Duration, error) {
	switch format {
	case "wav":
		decoder := wav.NewDecoder(bytes.NewReader(audio))
		if !decoder.IsValidFile() {
			return 0, fmt.Errorf("tts returned an invalid wav file")
		}
		return decoder.Duration()
	default:
		const sampleRate = 24000
		const bytesPerSample = 2
		samples := len(audio) / bytesPerSample
		return time.Duration(float64(samples) / sampleRate * float64(time.Second)), nil
	}
}

// STT transcribes a complete audio buffer.
func (c *Client) STT(ctx context.Context, audio []byte, inputFormat string) (string, error) {
	if err := validateFormat(inputFormat); err != nil {
		return "", err
	}
	return c.stt.Recognize(ctx, audio, inputFormat)
}
