package assemblyai

import (
	"testing"

	"github.com/google/uuid"
)

func TestNormalize(t *testing.T) {
	projectID := uuid.New()
	wire := &wireTranscript{
		ID:            "tr_1",
		Status:        "completed",
		Text:          "  Welcome back to the show.  ",
		LanguageCode:  "en_us",
		AudioDuration: 1834.5,
		Words: []wireWord{
			{Text: "Welcome", Start: 120, End: 480, Confidence: 0.98},
			{Text: "back", Start: 480, End: 720, Confidence: 0.97},
			{Text: "  ", Start: 720, End: 730},
		},
		Utterances: []wireUtterance{
			{Speaker: "A", Text: "Welcome back to the show.", Start: 120, End: 2400, Confidence: 0.97},
			{Speaker: "B", Text: "   ", Start: 2400, End: 2500},
		},
		Chapters: []wireChapter{
			{Headline: "Intro", Summary: "Host welcomes listeners.", Start: 0, End: 60000},
			{Headline: "  ", Summary: "", Start: 60000, End: 120000},
		},
	}

	got := Normalize(projectID, wire)

	if got.ProjectID != projectID {
		t.Fatalf("project id = %s, want %s", got.ProjectID, projectID)
	}
	if got.Provider != "assemblyai" {
		t.Errorf("provider = %q", got.Provider)
	}
	if got.Text != "Welcome back to the show." {
		t.Errorf("text = %q, not trimmed", got.Text)
	}
	if got.AudioDurationSecs != 1834.5 {
		t.Errorf("duration = %v", got.AudioDurationSecs)
	}

	segs := got.Segments.Data()
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2 (blank word dropped)", len(segs))
	}
	if segs[0].Word != "Welcome" || segs[0].StartMS != 120 || segs[0].EndMS != 480 {
		t.Errorf("first segment = %+v", segs[0])
	}

	utts := got.Utterances.Data()
	if len(utts) != 1 {
		t.Fatalf("utterances = %d, want 1 (blank utterance dropped)", len(utts))
	}
	if utts[0].Speaker != "Speaker A" {
		t.Errorf("speaker = %q, want %q", utts[0].Speaker, "Speaker A")
	}

	chapters := got.Chapters.Data()
	if len(chapters) != 1 {
		t.Fatalf("chapters = %d, want 1 (empty chapter dropped)", len(chapters))
	}
	if chapters[0].Headline != "Intro" {
		t.Errorf("chapter headline = %q", chapters[0].Headline)
	}
	if !got.HasChapters() {
		t.Error("HasChapters() = false, want true")
	}
}

func TestNormalizeNoChapters(t *testing.T) {
	got := Normalize(uuid.New(), &wireTranscript{Status: "completed", Text: "hello"})
	if got.HasChapters() {
		t.Fatal("HasChapters() = true for chapterless transcript")
	}
	if !got.HasText() {
		t.Fatal("HasText() = false")
	}
}

func TestSpeakerLabel(t *testing.T) {
	cases := map[string]string{
		"A":        "Speaker A",
		"":         "Speaker",
		"Narrator": "Narrator",
	}
	for in, want := range cases {
		if got := speakerLabel(in); got != want {
			t.Errorf("speakerLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
