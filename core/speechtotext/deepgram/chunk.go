package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/koscakluka/scribe-core/core/audio"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const listenURL = "https://api.deepgram.com/v1/listen"

// ChunkClient transcribes buffered audio chunks through the prerecorded
// listen endpoint, one request per chunk.
type ChunkClient struct {
	apiKey   string
	encoding audio.EncodingInfo

	baseURL    string
	httpClient *http.Client
}

func NewChunkClient() (*ChunkClient, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	return &ChunkClient{
		apiKey:     apiKey,
		encoding:   audio.GetDefaultEncodingInfo(),
		baseURL:    listenURL,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}, nil
}

func (c *ChunkClient) Transcribe(ctx context.Context, samples []float32) (string, error) {
	ctx, span := tracer.Start(ctx, "transcribe audio chunk")
	defer span.End()
	span.SetAttributes(attribute.Int("request.samples", len(samples)))

	encoding, err := convertEncoding(c.encoding)
	if err != nil {
		err = fmt.Errorf("invalid encoding: %w", err)
		span.RecordError(err)
		return "", err
	}

	requestURL, _ := url.Parse(c.baseURL)
	queryParams := requestURL.Query()
	queryParams.Set("encoding", encoding.Format.Name())
	queryParams.Set("sample_rate", strconv.Itoa(encoding.SampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", "nova-3")
	queryParams.Set("language", "en-US")
	queryParams.Set("smart_format", "true")
	requestURL.RawQuery = queryParams.Encode()

	req, err := http.NewRequestWithContext(ctx, "POST", requestURL.String(),
		bytes.NewReader(audio.BytesFromSamples(samples)))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		return "", err
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "audio/raw")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		return "", err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		return "", err
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("error reading response body: %w", err)
		span.RecordError(err)
		return "", err
	}

	var responseBody prerecordedResponseBody
	if err := json.Unmarshal(respBodyBytes, &responseBody); err != nil {
		err = fmt.Errorf("error unmarshalling response: %w", err)
		span.RecordError(err)
		return "", err
	}

	if len(responseBody.Results.Channels) == 0 ||
		len(responseBody.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}

	return strings.TrimSpace(responseBody.Results.Channels[0].Alternatives[0].Transcript), nil
}

type prerecordedResponseBody struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}
