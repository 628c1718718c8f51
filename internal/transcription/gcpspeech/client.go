package gcpspeech

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
	"gorm.io/datatypes"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/faults"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/gcp"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
)

const stepName = "transcription"

// Client transcribes gs:// audio via GCP Speech LongRunningRecognize. It
// yields word timing and speaker turns but no topic chapters, so transcripts
// it produces cannot feed the chapter-anchored tasks.
type Client struct {
	log    *logger.Logger
	client *speech.Client
}

func NewClient(log *logger.Logger) (*Client, error) {
	c, err := speech.NewClient(context.Background(), gcp.ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &Client{
		log:    log.With("service", "GCPSpeechClient"),
		client: c,
	}, nil
}

// PrefersGCSURI tells callers to hand this provider gs:// URIs rather than
// signed HTTP URLs.
func (c *Client) PrefersGCSURI() bool { return true }

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) Transcribe(ctx context.Context, projectID uuid.UUID, audioURL string) (*domain.Transcript, error) {
	if !strings.HasPrefix(audioURL, "gs://") {
		return nil, faults.Validationf(stepName, "gcp speech requires a gs:// uri, got %q", audioURL)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	req := &speechpb.LongRunningRecognizeRequest{
		Config: recognitionConfig(audioURL),
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Uri{Uri: audioURL}},
	}

	op, err := c.client.LongRunningRecognize(ctx, req)
	if err != nil {
		return nil, classify(err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, classify(err)
	}

	t := parseResponse(projectID, resp)
	if !t.HasText() {
		return nil, faults.Provider(stepName, fmt.Errorf("recognizer returned no transcript text for %s", audioURL))
	}

	c.log.Info("Transcription completed",
		"project_id", projectID,
		"segments", len(t.Segments.Data()),
		"utterances", len(t.Utterances.Data()),
	)
	return t, nil
}

func classify(err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded:
		return faults.Network(stepName, err)
	default:
		return faults.Provider(stepName, err)
	}
}

func recognitionConfig(gcsURI string) *speechpb.RecognitionConfig {
	return &speechpb.RecognitionConfig{
		LanguageCode:               "en-US",
		Model:                      "latest_long",
		EnableAutomaticPunctuation: true,
		EnableWordTimeOffsets:      true,
		Encoding:                   inferEncoding(gcsURI),
		DiarizationConfig: &speechpb.SpeakerDiarizationConfig{
			EnableSpeakerDiarization: true,
			MinSpeakerCount:          1,
			MaxSpeakerCount:          6,
		},
	}
}

func inferEncoding(gcsURI string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(filepath.Ext(gcsURI)) {
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case ".flac":
		return speechpb.RecognitionConfig_FLAC
	case ".mp3":
		return speechpb.RecognitionConfig_MP3
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

type word struct {
	text  string
	start int64
	end   int64
	spk   int
	conf  float64
}

func parseResponse(projectID uuid.UUID, resp *speechpb.LongRunningRecognizeResponse) *domain.Transcript {
	t := &domain.Transcript{
		ID:        uuid.New(),
		ProjectID: projectID,
		Provider:  "gcp_speech",
		Language:  "en-US",
		CreatedAt: time.Now().UTC(),
	}

	var full strings.Builder
	words := []word{}

	if resp != nil {
		for _, r := range resp.Results {
			if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
				continue
			}
			alt := r.Alternatives[0]
			if txt := strings.TrimSpace(alt.Transcript); txt != "" {
				if full.Len() > 0 {
					full.WriteString(" ")
				}
				full.WriteString(txt)
			}
			for _, ww := range alt.Words {
				if ww == nil || strings.TrimSpace(ww.Word) == "" {
					continue
				}
				words = append(words, word{
					text:  ww.Word,
					start: durToMS(ww.StartTime),
					end:   durToMS(ww.EndTime),
					spk:   int(ww.SpeakerTag),
					conf:  float64(ww.Confidence),
				})
			}
		}
	}

	t.Text = full.String()

	segments := make([]domain.Segment, 0, len(words))
	for _, w := range words {
		segments = append(segments, domain.Segment{
			Text:       w.text,
			Word:       w.text,
			StartMS:    w.start,
			EndMS:      w.end,
			Confidence: w.conf,
		})
	}
	t.Segments = datatypes.NewJSONType(segments)
	t.Utterances = datatypes.NewJSONType(groupBySpeaker(words))
	t.Chapters = datatypes.NewJSONType([]domain.Chapter{})
	return t
}

// groupBySpeaker folds the word stream into speaker turns. A turn ends when
// the diarization tag changes.
func groupBySpeaker(words []word) []domain.Utterance {
	if len(words) == 0 {
		return []domain.Utterance{}
	}

	out := []domain.Utterance{}
	curSpk := words[0].spk
	curStart := words[0].start
	curEnd := words[0].end
	var buf strings.Builder
	var confSum float64
	var confN int

	flush := func() {
		txt := strings.TrimSpace(buf.String())
		if txt == "" {
			return
		}
		u := domain.Utterance{
			Speaker: fmt.Sprintf("Speaker %d", curSpk),
			Text:    txt,
			StartMS: curStart,
			EndMS:   curEnd,
		}
		if confN > 0 {
			u.Confidence = confSum / float64(confN)
		}
		out = append(out, u)
		buf.Reset()
		confSum = 0
		confN = 0
	}

	for _, w := range words {
		if w.spk != curSpk && buf.Len() > 0 {
			flush()
			curSpk = w.spk
			curStart = w.start
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(w.text)
		if w.end > curEnd {
			curEnd = w.end
		}
		if w.conf > 0 {
			confSum += w.conf
			confN++
		}
	}
	flush()
	return out
}

func durToMS(d *durationpb.Duration) int64 {
	if d == nil {
		return 0
	}
	return d.Seconds*1000 + int64(d.Nanos)/1e6
}
