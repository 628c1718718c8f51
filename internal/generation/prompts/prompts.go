package prompts

import (
	"fmt"
	"strings"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
)

// maxExcerptChars bounds the transcript text handed to the model so request
// size stays inside provider limits for multi-hour episodes.
const maxExcerptChars = 24000

const systemBase = "You are an assistant for podcast creators. You are given a podcast episode transcript and produce publication-ready material. Ground everything in the transcript; never invent names, facts, or quotes. Respond only with JSON matching the requested schema."

func System() string { return systemBase }

// Excerpt returns the transcript text clipped to the request budget, cut on a
// word boundary.
func Excerpt(t *domain.Transcript) string {
	text := strings.TrimSpace(t.Text)
	if len(text) <= maxExcerptChars {
		return text
	}
	clipped := text[:maxExcerptChars]
	if idx := strings.LastIndexByte(clipped, ' '); idx > 0 {
		clipped = clipped[:idx]
	}
	return clipped + " [transcript truncated]"
}

// ChapterOutline renders the detected topic chapters with their start offsets,
// for the time-anchored tasks.
func ChapterOutline(t *domain.Transcript, format func(ms int64) string) string {
	var b strings.Builder
	for _, ch := range t.Chapters.Data() {
		title := ch.Headline
		if title == "" {
			title = ch.Gist
		}
		fmt.Fprintf(&b, "- [%s] %s", format(ch.StartMS), title)
		if ch.Summary != "" {
			fmt.Fprintf(&b, ": %s", ch.Summary)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func SpeakerSample(t *domain.Transcript, maxTurns int) string {
	utts := t.Utterances.Data()
	if len(utts) == 0 {
		return ""
	}
	if maxTurns > 0 && len(utts) > maxTurns {
		utts = utts[:maxTurns]
	}
	var b strings.Builder
	for _, u := range utts {
		fmt.Fprintf(&b, "%s: %s\n", u.Speaker, u.Text)
	}
	return b.String()
}

func SummaryUser(t *domain.Transcript) string {
	return fmt.Sprintf(`Summarize this podcast episode.

Produce:
- "full": a multi-paragraph narrative summary
- "bullets": 5 to 7 bullet points covering the main discussion
- "insights": 3 to 5 key takeaways a listener should remember
- "tldr": one or two sentences

Transcript:
%s`, Excerpt(t))
}

func SocialPostsUser(t *domain.Transcript) string {
	return fmt.Sprintf(`Write promotional social media posts for this podcast episode.

Produce:
- "twitter": a single post under 280 characters, punchy, no hashtag spam
- "linkedin": a professional post, 2 to 4 short paragraphs
- "instagram": a caption with line breaks and a call to action

Transcript:
%s`, Excerpt(t))
}

func TitlesUser(t *domain.Transcript) string {
	return fmt.Sprintf(`Suggest episode titles for this podcast.

Produce "titles": 3 to 8 distinct title options. Mix styles: direct,
curiosity-driven, and benefit-led. No clickbait that the episode cannot
deliver on.

Transcript:
%s`, Excerpt(t))
}

func HashtagsUser(t *domain.Transcript) string {
	return fmt.Sprintf(`Suggest social media hashtags for this podcast episode.

Produce "hashtags": 5 to 30 hashtags, each starting with '#', no spaces,
ordered from most to least relevant. Mix broad and niche tags.

Transcript:
%s`, Excerpt(t))
}

func KeyMomentsUser(t *domain.Transcript, format func(ms int64) string) string {
	return fmt.Sprintf(`Identify the key moments of this podcast episode.

Produce "moments": 3 to 10 entries, each with:
- "timestamp": HH:MM:SS offset into the episode, taken from the chapter outline below
- "title": a short label
- "description": one or two sentences on why the moment matters

Chapter outline (authoritative offsets):
%s
Transcript:
%s`, ChapterOutline(t, format), Excerpt(t))
}

func YouTubeTimestampsUser(t *domain.Transcript, format func(ms int64) string) string {
	return fmt.Sprintf(`Write a YouTube chapter list for this podcast episode.

Produce "chapters": one entry per topic, each with:
- "timestamp": HH:MM:SS offset, taken from the chapter outline below
- "title": a concise chapter title as it should appear on YouTube

The first chapter must start at 00:00:00. Keep chapters in chronological order.

Chapter outline (authoritative offsets):
%s
Transcript:
%s`, ChapterOutline(t, format), Excerpt(t))
}
