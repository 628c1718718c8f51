package domain

// Artifact payloads. Each is written only as a whole value per task; no
// partial merges within one artifact.

type Summary struct {
	Full     string   `json:"full"`
	Bullets  []string `json:"bullets"`  // 5-7
	Insights []string `json:"insights"` // 3-5
	TLDR     string   `json:"tldr"`
}

type SocialPosts struct {
	Twitter   string `json:"twitter"` // capped at 280 chars post-hoc
	LinkedIn  string `json:"linkedin"`
	Instagram string `json:"instagram"`
}

type Titles struct {
	Titles []string `json:"titles"`
}

type Hashtags struct {
	Hashtags []string `json:"hashtags"`
}

type KeyMoment struct {
	Timestamp   string `json:"timestamp"` // HH:MM:SS
	Title       string `json:"title"`
	Description string `json:"description"`
}

type KeyMoments struct {
	Moments []KeyMoment `json:"moments"`
}

type YouTubeChapter struct {
	Timestamp string `json:"timestamp"` // HH:MM:SS, first entry pinned to 00:00:00
	Title     string `json:"title"`
}

type YouTubeTimestamps struct {
	Chapters []YouTubeChapter `json:"chapters"`
}
