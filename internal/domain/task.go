package domain

import "fmt"

// TaskName identifies one independent generation task. The string values are
// wire/storage names: they key job_errors entries and retry requests.
type TaskName string

const (
	TaskSummary           TaskName = "summary"
	TaskSocialPosts       TaskName = "socialPosts"
	TaskTitles            TaskName = "titles"
	TaskHashtags          TaskName = "hashtags"
	TaskKeyMoments        TaskName = "keyMoments"
	TaskYouTubeTimestamps TaskName = "youtubeTimestamps"
)

func AllTasks() []TaskName {
	return []TaskName{
		TaskSummary,
		TaskSocialPosts,
		TaskTitles,
		TaskHashtags,
		TaskKeyMoments,
		TaskYouTubeTimestamps,
	}
}

func ParseTaskName(s string) (TaskName, error) {
	for _, t := range AllTasks() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown generation task %q", s)
}
