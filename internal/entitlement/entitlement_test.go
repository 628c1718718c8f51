package entitlement

import (
	"encoding/json"
	"testing"

	"gorm.io/datatypes"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
)

func TestEntitledTasksMonotonic(t *testing.T) {
	free := EntitledTasks(TierFree)
	pro := EntitledTasks(TierPro)
	ultra := EntitledTasks(TierUltra)

	assertSubset := func(lo, hi []domain.TaskName, loName, hiName string) {
		t.Helper()
		set := map[domain.TaskName]bool{}
		for _, name := range hi {
			set[name] = true
		}
		for _, name := range lo {
			if !set[name] {
				t.Errorf("%s task %s missing from %s", loName, name, hiName)
			}
		}
	}
	assertSubset(free, pro, "free", "pro")
	assertSubset(pro, ultra, "pro", "ultra")

	if len(free) != 1 || free[0] != domain.TaskSummary {
		t.Errorf("free tier = %v, want [summary]", free)
	}
	if len(pro) != 4 {
		t.Errorf("pro tier unlocks %d tasks, want 4", len(pro))
	}
	if len(ultra) != len(domain.AllTasks()) {
		t.Errorf("ultra tier unlocks %d tasks, want all %d", len(ultra), len(domain.AllTasks()))
	}
}

func TestEntitles(t *testing.T) {
	cases := []struct {
		tier Tier
		task domain.TaskName
		want bool
	}{
		{TierFree, domain.TaskSummary, true},
		{TierFree, domain.TaskSocialPosts, false},
		{TierPro, domain.TaskHashtags, true},
		{TierPro, domain.TaskYouTubeTimestamps, false},
		{TierUltra, domain.TaskKeyMoments, true},
	}
	for _, tc := range cases {
		if got := Entitles(tc.tier, tc.task); got != tc.want {
			t.Errorf("Entitles(%s, %s) = %v, want %v", tc.tier, tc.task, got, tc.want)
		}
	}
}

func mustJSON(t *testing.T, v any) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return datatypes.JSON(raw)
}

func TestInferOriginalTier(t *testing.T) {
	summary := mustJSON(t, domain.Summary{Full: "f", TLDR: "t"})
	titles := mustJSON(t, domain.Titles{Titles: []string{"a"}})
	moments := mustJSON(t, domain.KeyMoments{Moments: []domain.KeyMoment{{Timestamp: "00:01:00", Title: "x"}}})

	cases := []struct {
		name string
		p    *domain.Project
		want Tier
	}{
		{"nil project", nil, TierFree},
		{"no artifacts", &domain.Project{}, TierFree},
		{"summary only", &domain.Project{Summary: summary}, TierFree},
		{"pro artifacts", &domain.Project{Summary: summary, Titles: titles}, TierPro},
		{"ultra artifacts", &domain.Project{KeyMoments: moments}, TierUltra},
		{"ultra wins over pro", &domain.Project{Titles: titles, KeyMoments: moments}, TierUltra},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InferOriginalTier(tc.p); got != tc.want {
				t.Fatalf("InferOriginalTier = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestParseTier(t *testing.T) {
	if tier, err := ParseTier(" Ultra "); err != nil || tier != TierUltra {
		t.Fatalf("ParseTier(Ultra) = %v, %v", tier, err)
	}
	if _, err := ParseTier("platinum"); err == nil {
		t.Fatal("ParseTier(platinum) should fail")
	}
}
