package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
)

// FailureMessage replaces the insights whenever the summarization service could not produce them
const FailureMessage = "Error: Could not retrieve insights from AI. Please check the logs for more details."

const (
	apiKeyHeader = "x-goog-api-key"
	textPath     = "candidates.0.content.parts.0.text"
)

var log = logger.GetOrCreate("insight")

// ArgsInsightRequestor defines the insight requestor arguments
type ArgsInsightRequestor struct {
	Endpoint string
	Model    string
	APIKey   string
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type insightRequestor struct {
	url    string
	apiKey string
	client *http.Client
}

// NewInsightRequestor creates a requestor for a generateContent compatible summarization service. The requests are
// bounded only by the provided context.
func NewInsightRequestor(args ArgsInsightRequestor) (*insightRequestor, error) {
	if len(args.Endpoint) == 0 {
		return nil, errors.New("empty insight endpoint")
	}
	if len(args.Model) == 0 {
		return nil, errors.New("empty insight model")
	}
	if len(args.APIKey) == 0 {
		log.Warn("no API key configured, insight requests will fail")
	}

	return &insightRequestor{
		url:    fmt.Sprintf("%s/models/%s:generateContent", strings.TrimSuffix(args.Endpoint, "/"), args.Model),
		apiKey: args.APIKey,
		client: &http.Client{},
	}, nil
}

// Analyze returns the markdown insights for the provided snapshot or FailureMessage. It never returns an error.
func (r *insightRequestor) Analyze(ctx context.Context, metrics common.Metrics, telemetryErrors []common.TelemetryError) string {
	text, err := r.requestInsights(ctx, BuildPrompt(metrics, telemetryErrors))
	if err != nil {
		log.Error("error analyzing telemetry", "url", r.url, "error", err)
		return FailureMessage
	}

	log.Debug("insights retrieved", "num errors", len(telemetryErrors), "length", len(text))

	return text
}

func (r *insightRequestor) requestInsights(ctx context.Context, prompt string) (string, error) {
	if len(r.apiKey) == 0 {
		return "", errMissingAPIKey
	}

	body, err := json.Marshal(generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal insight request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create insight request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error requesting insights: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errStatusNotOK(resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	text := gjson.GetBytes(respBody, textPath)
	if !text.Exists() || len(text.String()) == 0 {
		return "", errTextNotFound(textPath)
	}

	return text.String(), nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (r *insightRequestor) IsInterfaceNil() bool {
	return r == nil
}
