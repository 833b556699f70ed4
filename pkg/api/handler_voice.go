package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/opencity/insight/pkg/events"
)

func (s *Server) requireVoice(c *echo.Context) error {
	if s.voice == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, ErrorResponse{Kind: "ConfigError", Message: "voice is not configured"})
	}
	return nil
}

func (s *Server) voiceTTSHandler(c *echo.Context) error {
	if err := s.requireVoice(c); err != nil {
		return err
	}
	var req VoiceTTSRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Kind: "BadRequest", Message: err.Error()})
	}

	audio, err := s.voice.TTS(c.Request().Context(), req.Text, req.VoiceID, req.OutputFormat)
	if err != nil {
		return mapError(err)
	}
	return c.Blob(http.StatusOK, "application/octet-stream", audio)
}

func (s *Server) voiceTTSStreamHandler(c *echo.Context) error {
	if err := s.requireVoice(c); err != nil {
		return err
	}
	var req VoiceTTSRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Kind: "BadRequest", Message: err.Error()})
	}

	resp := c.Response()
	resp.Header().Set("Content-Type", "application/octet-stream")
	resp.WriteHeader(http.StatusOK)

	chunks, errc := s.voice.TTSStream(c.Request().Context(), req.Text, req.VoiceID, req.OutputFormat)
	for chunk := range chunks {
		if _, err := resp.Write(chunk); err != nil {
			return nil
		}
		resp.Flush()
	}
	if err := <-errc; err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Server) voiceTTSTimestampsHandler(c *echo.Context) error {
	if err := s.requireVoice(c); err != nil {
		return err
	}
	var req VoiceTTSRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Kind: "BadRequest", Message: err.Error()})
	}

	result, err := s.voice.TTSWithTimestamps(c.Request().Context(), req.Text, req.VoiceID, req.OutputFormat)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) voiceSTTHandler(c *echo.Context) error {
	if err := s.requireVoice(c); err != nil {
		return err
	}
	var req VoiceSTTRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Kind: "BadRequest", Message: err.Error()})
	}

	audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Kind: "BadRequest", Message: "invalid base64 audio"})
	}

	transcript, err := s.voice.STT(c.Request().Context(), audio, req.InputFormat)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, VoiceSTTResponse{Transcript: transcript})
}

// voiceSTTStreamHandler handles POST /api/voice/stt/stream: the request
// body is newline-delimited JSON chunks; the response is an SSE stream
// of {type, text} events followed by a terminal {type: "complete"}.
func (s *Server) voiceSTTStreamHandler(c *echo.Context) error {
	if err := s.requireVoice(c); err != nil {
		return err
	}

	ctx := c.Request().Context()
	decoder := json.NewDecoder(c.Request().Body)

	var first VoiceSTTStreamChunk
	if err := decoder.Decode(&first); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Kind: "BadRequest", Message: err.Error()})
	}

	stream, push, err := s.voice.STTStream(ctx, first.InputFormat)
	if err != nil {
		return mapError(err)
	}

	resp := c.Response()
	resp.Header().Set("Content-Type", "text/event-stream")
	resp.WriteHeader(http.StatusOK)
	writer := events.NewWriter(resp, resp)

	sendChunk := func(chunk VoiceSTTStreamChunk) error {
		audio, decodeErr := base64.StdEncoding.DecodeString(chunk.AudioChunk)
		if decodeErr != nil {
			return decodeErr
		}
		return push(audio, chunk.IsFinal)
	}

	if err := sendChunk(first); err != nil {
		return mapError(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var chunk VoiceSTTStreamChunk
			if decodeErr := decoder.Decode(&chunk); decodeErr != nil {
				return
			}
			if err := sendChunk(chunk); err != nil {
				return
			}
			if chunk.IsFinal {
				return
			}
		}
	}()

	for event := range stream {
		_ = writer.Write(events.Event{Type: events.Type(event.Type), Content: event.Text})
	}
	<-done
	_ = writer.Write(events.Event{Type: events.TypeComplete, Content: "complete"})
	return nil
}
