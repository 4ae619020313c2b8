package deepgram

import (
	"fmt"

	"github.com/koscakluka/scribe-core/core/audio"
)

type encodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

type encodingFormat string

func (e encodingFormat) Name() string { return string(e) }

const (
	encodingLinear16 encodingFormat = "linear16"
)

// convertEncoding maps engine encoding info onto what the Deepgram listen
// endpoints accept. Float32 sample buffers are converted to linear16 before
// they reach the API, so only linear16 is representable here.
func convertEncoding(encoding audio.EncodingInfo) (*encodingInfo, error) {
	deepgramEncoding := encodingInfo{}
	switch encoding.SampleRate {
	case 8000, 16000, 24000, 32000, 48000:
		deepgramEncoding.SampleRate = encoding.SampleRate
	default:
		return nil, fmt.Errorf("unsupported sample rate")
	}

	switch encoding.Format {
	case audio.EncodingLinear16, audio.EncodingFloat32:
		deepgramEncoding.Format = encodingLinear16
	default:
		return nil, fmt.Errorf("unsupported encoding")
	}

	return &deepgramEncoding, nil
}
