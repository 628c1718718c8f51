package generation

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/zitaharry/ai-podcast-saas/internal/data/repos/testutil"
	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/faults"
)

type fakeAI struct {
	obj map[string]any
	err error

	calls int
}

func (f *fakeAI) GenerateJSON(_ context.Context, _ string, _ string, _ string, _ map[string]any) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.obj, nil
}

func asObj(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return obj
}

func textTranscript() *domain.Transcript {
	t := &domain.Transcript{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		Text:      "Welcome back. Today we talk about growing a podcast audience.",
		Provider:  "assemblyai",
	}
	t.Chapters = datatypes.NewJSONType([]domain.Chapter{})
	return t
}

func chapteredTranscript() *domain.Transcript {
	t := textTranscript()
	t.Chapters = datatypes.NewJSONType([]domain.Chapter{
		{Headline: "Intro", Summary: "Welcome and framing.", StartMS: 0, EndMS: 90000},
		{Headline: "Growth tactics", Summary: "Distribution channels.", StartMS: 90000, EndMS: 600000},
	})
	return t
}

func TestTruncateTweetAtCap(t *testing.T) {
	long := strings.Repeat("a", 310)
	got := TruncateTweet(long)
	if n := len([]rune(got)); n != 280 {
		t.Fatalf("truncated tweet is %d chars, want exactly 280", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated tweet missing ellipsis marker: %q", got[270:])
	}
	if !strings.HasPrefix(got, strings.Repeat("a", 277)) {
		t.Fatal("truncated tweet does not keep the first 277 chars")
	}

	short := "fits fine"
	if TruncateTweet(short) != short {
		t.Fatal("short post should pass through untouched")
	}
	exact := strings.Repeat("b", 280)
	if TruncateTweet(exact) != exact {
		t.Fatal("280-char post should pass through untouched")
	}
}

func TestSocialPostsRunTruncates(t *testing.T) {
	ai := &fakeAI{obj: asObj(t, domain.SocialPosts{
		Twitter:   strings.Repeat("x", 310),
		LinkedIn:  "A longer professional post.",
		Instagram: "Caption here.",
	})}
	task := &socialPostsTask{ai: ai, log: testutil.Logger(t)}

	raw, err := task.Run(context.Background(), textTranscript())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var out domain.SocialPosts
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	if n := len([]rune(out.Twitter)); n != 280 {
		t.Fatalf("persisted twitter post is %d chars, want 280", n)
	}
}

func TestNormalizeHashtags(t *testing.T) {
	in := []string{" #Podcasting ", "growth", "##Growth", "#two words", "  ", "#podcasting"}
	got := NormalizeHashtags(in)
	want := []string{"#Podcasting", "#growth", "#twowords"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNormalizeHashtagsCap(t *testing.T) {
	in := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		in = append(in, "#tag"+strings.Repeat("x", i+1))
	}
	if got := NormalizeHashtags(in); len(got) != maxHashtags {
		t.Fatalf("got %d tags, want cap %d", len(got), maxHashtags)
	}
}

func TestValidateSummaryBounds(t *testing.T) {
	ok := &domain.Summary{
		Full:     "Long form summary.",
		TLDR:     "Short.",
		Bullets:  []string{"a", "b", "c", "d", "e"},
		Insights: []string{"i1", "i2", "i3"},
	}
	if err := validateSummary(ok); err != nil {
		t.Fatalf("valid summary rejected: %v", err)
	}

	few := &domain.Summary{
		Full:     "x",
		TLDR:     "y",
		Bullets:  []string{"a", "b", "c", "d", " "},
		Insights: []string{"i1", "i2", "i3"},
	}
	err := validateSummary(few)
	if err == nil {
		t.Fatal("summary with 4 usable bullets accepted")
	}
	if faults.KindOf(err) != faults.KindValidation {
		t.Fatalf("kind = %q, want %q", faults.KindOf(err), faults.KindValidation)
	}
}

func TestChapterPreconditions(t *testing.T) {
	reg := NewRegistry(&fakeAI{}, testutil.Logger(t))
	noChapters := textTranscript()

	for _, name := range []domain.TaskName{domain.TaskKeyMoments, domain.TaskYouTubeTimestamps} {
		task, err := reg.Get(name)
		if err != nil {
			t.Fatalf("Get(%s): %v", name, err)
		}
		err = task.Validate(noChapters)
		if faults.KindOf(err) != faults.KindPrecondition {
			t.Errorf("%s on chapterless transcript: kind = %q, want %q", name, faults.KindOf(err), faults.KindPrecondition)
		}
		if err := task.Validate(chapteredTranscript()); err != nil {
			t.Errorf("%s on chaptered transcript: %v", name, err)
		}
	}

	summary, _ := reg.Get(domain.TaskSummary)
	if err := summary.Validate(noChapters); err != nil {
		t.Errorf("summary should not require chapters: %v", err)
	}
}

func TestYouTubeChaptersPinnedAndSorted(t *testing.T) {
	ai := &fakeAI{obj: asObj(t, domain.YouTubeTimestamps{Chapters: []domain.YouTubeChapter{
		{Timestamp: "00:10:00", Title: "Middle"},
		{Timestamp: "00:00:42", Title: "Intro"},
		{Timestamp: "01:02:03", Title: "Close"},
	}})}
	task := &youtubeTimestampsTask{ai: ai, log: testutil.Logger(t)}

	raw, err := task.Run(context.Background(), chapteredTranscript())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var out domain.YouTubeTimestamps
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Chapters[0].Timestamp != "00:00:00" {
		t.Errorf("first chapter = %q, want pinned 00:00:00", out.Chapters[0].Timestamp)
	}
	if out.Chapters[0].Title != "Intro" {
		t.Errorf("chapters not sorted: first is %q", out.Chapters[0].Title)
	}
	if out.Chapters[2].Timestamp != "01:02:03" {
		t.Errorf("last chapter = %q", out.Chapters[2].Timestamp)
	}
}

func TestKeyMomentsRejectsBadTimestamp(t *testing.T) {
	ai := &fakeAI{obj: asObj(t, domain.KeyMoments{Moments: []domain.KeyMoment{
		{Timestamp: "12:99", Title: "Broken", Description: "d"},
	}})}
	task := &keyMomentsTask{ai: ai, log: testutil.Logger(t)}

	_, err := task.Run(context.Background(), chapteredTranscript())
	if faults.KindOf(err) != faults.KindValidation {
		t.Fatalf("kind = %q, want %q (err=%v)", faults.KindOf(err), faults.KindValidation, err)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{0, "00:00:00"},
		{42999, "00:00:42"},
		{3723000, "01:02:03"},
		{-5, "00:00:00"},
	}
	for _, tc := range cases {
		if got := FormatHHMMSS(tc.ms); got != tc.want {
			t.Errorf("FormatHHMMSS(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}

	sec, err := ParseHHMMSS("01:02:03")
	if err != nil || sec != 3723 {
		t.Fatalf("ParseHHMMSS = %d, %v", sec, err)
	}
	for _, bad := range []string{"1:02:03", "00:60:00", "00:00", "abc"} {
		if _, err := ParseHHMMSS(bad); err == nil {
			t.Errorf("ParseHHMMSS(%q) accepted", bad)
		}
	}
}

func TestRegistryCoversAllTasks(t *testing.T) {
	reg := NewRegistry(&fakeAI{}, testutil.Logger(t))
	for _, name := range domain.AllTasks() {
		task, err := reg.Get(name)
		if err != nil {
			t.Fatalf("Get(%s): %v", name, err)
		}
		if task.Name() != name {
			t.Errorf("task registered under %s reports %s", name, task.Name())
		}
	}
	if _, err := reg.Get("transcripts"); err == nil {
		t.Fatal("unknown task name accepted")
	}
}
