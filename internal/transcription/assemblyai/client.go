package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/faults"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/httpx"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
)

const stepName = "transcription"

type Client struct {
	log          *logger.Logger
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
}

func NewClient(log *logger.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("ASSEMBLYAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing ASSEMBLYAI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("ASSEMBLYAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.assemblyai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	pollSec := 3
	if v := strings.TrimSpace(os.Getenv("ASSEMBLYAI_POLL_SECONDS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			pollSec = parsed
		}
	}
	timeoutMin := 60
	if v := strings.TrimSpace(os.Getenv("ASSEMBLYAI_TIMEOUT_MINUTES")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			timeoutMin = parsed
		}
	}

	return &Client{
		log:          log.With("service", "AssemblyAIClient"),
		baseURL:      baseURL,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: time.Duration(pollSec) * time.Second,
		pollTimeout:  time.Duration(timeoutMin) * time.Minute,
	}, nil
}

type submitRequest struct {
	AudioURL      string `json:"audio_url"`
	SpeakerLabels bool   `json:"speaker_labels"`
	AutoChapters  bool   `json:"auto_chapters"`
	Punctuate     bool   `json:"punctuate"`
	FormatText    bool   `json:"format_text"`
}

type wireWord struct {
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker,omitempty"`
}

type wireUtterance struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence"`
}

type wireChapter struct {
	Summary  string `json:"summary"`
	Headline string `json:"headline"`
	Gist     string `json:"gist"`
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
}

type wireTranscript struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"` // queued | processing | completed | error
	Text          string          `json:"text"`
	Error         string          `json:"error,omitempty"`
	LanguageCode  string          `json:"language_code,omitempty"`
	AudioDuration float64         `json:"audio_duration,omitempty"`
	Words         []wireWord      `json:"words,omitempty"`
	Utterances    []wireUtterance `json:"utterances,omitempty"`
	Chapters      []wireChapter   `json:"chapters,omitempty"`
}

type apiHTTPError struct {
	StatusCode int
	Body       string
}

func (e *apiHTTPError) Error() string {
	return fmt.Sprintf("assemblyai http %d: %s", e.StatusCode, e.Body)
}

func (e *apiHTTPError) HTTPStatusCode() int { return e.StatusCode }

// Transcribe submits the audio URL, polls until the provider settles, and
// returns the normalized canonical transcript. The provider is async
// internally; callers see a single blocking call.
func (c *Client) Transcribe(ctx context.Context, projectID uuid.UUID, audioURL string) (*domain.Transcript, error) {
	if strings.TrimSpace(audioURL) == "" {
		return nil, faults.Validationf(stepName, "empty audio url")
	}

	submitted, err := c.submit(ctx, audioURL)
	if err != nil {
		return nil, err
	}

	c.log.Info("Transcription submitted", "project_id", projectID, "provider_id", submitted.ID)

	settled, err := c.poll(ctx, submitted.ID)
	if err != nil {
		return nil, err
	}
	if settled.Status == "error" {
		return nil, faults.Provider(stepName, fmt.Errorf("provider reported failure: %s", settled.Error))
	}

	return Normalize(projectID, settled), nil
}

func (c *Client) submit(ctx context.Context, audioURL string) (*wireTranscript, error) {
	req := submitRequest{
		AudioURL:      audioURL,
		SpeakerLabels: true,
		AutoChapters:  true,
		Punctuate:     true,
		FormatText:    true,
	}
	var out wireTranscript
	if err := c.do(ctx, "POST", "/v2/transcript", req, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, faults.Provider(stepName, fmt.Errorf("submit returned no transcript id"))
	}
	return &out, nil
}

func (c *Client) poll(ctx context.Context, id string) (*wireTranscript, error) {
	deadline := time.Now().Add(c.pollTimeout)
	for {
		if ctx.Err() != nil {
			return nil, faults.Network(stepName, ctx.Err())
		}
		if time.Now().After(deadline) {
			return nil, faults.Network(stepName, fmt.Errorf("transcription did not settle within %s", c.pollTimeout))
		}

		var out wireTranscript
		if err := c.do(ctx, "GET", "/v2/transcript/"+id, nil, &out); err != nil {
			return nil, err
		}
		switch out.Status {
		case "completed", "error":
			return &out, nil
		}

		select {
		case <-ctx.Done():
			return nil, faults.Network(stepName, ctx.Err())
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return faults.Validationf(stepName, "encode request: %v", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return faults.Network(stepName, err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return faults.Network(stepName, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return faults.Network(stepName, readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &apiHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		if httpx.IsRetryableHTTPStatus(resp.StatusCode) {
			return faults.Network(stepName, httpErr)
		}
		return faults.Provider(stepName, httpErr)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return faults.Provider(stepName, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}
