package voice

import (
	"context"
	"io"
)

// StreamEvent is one event emitted by STTStream: a "transcript" event
// carrying recognized text, or an "error" event carrying the recognition
// stream's failure message. STTStream never emits "complete".
type StreamEvent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// STTStream opens a streaming recognition session and returns a channel
// of StreamEvent, fed by repeated calls to the returned push function.
// The caller sends chunks via push; a push with isFinal set also closes
// the sending side of the recognition stream. The event channel carries
// one "transcript" event per backend response, then an "error" event if
// the stream ends with anything other than io.EOF, and is closed when the
// stream ends or ctx is cancelled.
func (c *Client) STTStream(ctx context.Context, inputFormat string) (events <-chan StreamEvent, push func(chunk []byte, isFinal bool) error, err error) {
	if formatErr := validateFormat(inputFormat); formatErr != nil {
		return nil, nil, formatErr
	}

	session, err := c.stt.StreamingRecognize(ctx)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan StreamEvent)
	go func() {
		defer close(out)
		for {
			text, _, recvErr := session.Recv()
			if recvErr != nil {
				if recvErr != io.EOF {
					select {
					case out <- StreamEvent{Type: "error", Text: recvErr.Error()}:
					case <-ctx.Done():
					}
				}
				return
			}
			select {
			case out <- StreamEvent{Type: "transcript", Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()

	pushFunc := func(chunk []byte, isFinal bool) error {
		if sendErr := session.Send(chunk, isFinal); sendErr != nil {
			return sendErr
		}
		if isFinal {
			return session.Close()
		}
		return nil
	}

	return out, pushFunc, nil
}
