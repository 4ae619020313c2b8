package portaudio

import (
	"context"
	"log"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/scribe-core/core/audio"
)

// Client captures microphone audio as float32 sample chunks, for feeding an
// in-person consultation into a room without a remote client.
type Client struct {
	bufferSize int
	stream     *portaudio.Stream

	in []float32
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	in := make([]float32, bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, audio.DefaultSampleRate, bufferSize, in)
	if err != nil {
		return nil, err
	}

	return &Client{
		bufferSize: bufferSize,
		stream:     stream,
		in:         in,
	}, nil
}

// Stream reads microphone chunks until the context is cancelled. Each chunk
// handed to onSamples is a fresh copy, safe to retain.
func (c *Client) Stream(ctx context.Context, onSamples func(samples []float32)) error {
	if err := c.stream.Start(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.stream.Read(); err != nil {
				log.Printf("Failed to read from PortAudio stream: %v", err)
				continue
			}

			samples := make([]float32, len(c.in))
			copy(samples, c.in)
			onSamples(samples)
		}
	}
}

func (c *Client) Close() {
	c.stream.Close()
	portaudio.Terminate()
}
