package service

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"errors"
	"testing"
	"time"
)

type fakeResultSource struct {
	results []model.Result
	since   time.Time
}

func (f *fakeResultSource) ListForLeaderboard(contentType model.ContentType, contentID uint, since time.Time) ([]model.Result, error) {
	f.since = since
	var out []model.Result
	for _, r := range f.results {
		if !since.IsZero() && r.SubmittedAt.Before(since) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func leaderboardResult(studentID uint, testID uint, score int, submittedAt time.Time) model.Result {
	id := testID
	return model.Result{
		StudentID:   studentID,
		TestID:      &id,
		Type:        model.ContentTest,
		Score:       score,
		SubmittedAt: submittedAt,
	}
}

func TestRankCompetitionTies(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	results := []model.Result{
		leaderboardResult(1, 5, 90, base),
		leaderboardResult(2, 5, 90, base.Add(time.Minute)),
		leaderboardResult(3, 5, 80, base),
		leaderboardResult(4, 5, 70, base),
	}

	entries := Rank(results)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	// 90,90,80,70 -> 名次 1,1,3,4
	wantRanks := []int{1, 1, 3, 4}
	for i, want := range wantRanks {
		if entries[i].Rank != want {
			t.Errorf("entry %d: expected rank %d, got %d", i, want, entries[i].Rank)
		}
	}

	// 同分先交卷者在前
	if entries[0].StudentID != 1 || entries[1].StudentID != 2 {
		t.Errorf("tied entries must order by submission time, got %d then %d", entries[0].StudentID, entries[1].StudentID)
	}
}

func TestRankDeduplicatesByLatestSubmission(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	results := []model.Result{
		leaderboardResult(1, 5, 40, base),
		leaderboardResult(1, 5, 95, base.Add(time.Hour)), // 重交覆盖
		leaderboardResult(2, 5, 60, base),
	}

	entries := Rank(results)
	if len(entries) != 2 {
		t.Fatalf("expected deduplicated entries, got %d", len(entries))
	}
	if entries[0].StudentID != 1 || entries[0].Score != 95 {
		t.Errorf("expected latest submission to win, got student %d score %d", entries[0].StudentID, entries[0].Score)
	}
}

func TestRankKeepsZeroScores(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	results := []model.Result{
		leaderboardResult(1, 5, 100, base),
		leaderboardResult(2, 5, 0, base),
	}

	entries := Rank(results)
	if len(entries) != 2 {
		t.Fatalf("0 分也是有效条目, got %d entries", len(entries))
	}
	if entries[1].Score != 0 || entries[1].Rank != 2 {
		t.Errorf("expected zero-score entry ranked last, got score %d rank %d", entries[1].Score, entries[1].Rank)
	}
}

func TestRankSeparatesContents(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	// 同一学生在两份测试各有成绩，不互相去重
	results := []model.Result{
		leaderboardResult(1, 5, 90, base),
		leaderboardResult(1, 6, 80, base),
	}

	entries := Rank(results)
	if len(entries) != 2 {
		t.Fatalf("results for different contents must both survive, got %d", len(entries))
	}
}

func TestGetLeaderboardTimeRange(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	source := &fakeResultSource{
		results: []model.Result{
			leaderboardResult(1, 5, 90, now.Add(-2*24*time.Hour)),
			leaderboardResult(2, 5, 95, now.Add(-8*24*time.Hour)), // 8 天前
		},
	}
	svc := NewLeaderboardService(source, nil)
	svc.nowFn = func() time.Time { return now }

	week, err := svc.GetLeaderboard(model.ContentTest, 5, RangeWeek)
	if err != nil {
		t.Fatalf("week leaderboard failed: %v", err)
	}
	if len(week) != 1 || week[0].StudentID != 1 {
		t.Errorf("8-day-old result must be excluded from the week range, got %v", week)
	}

	month, err := svc.GetLeaderboard(model.ContentTest, 5, RangeMonth)
	if err != nil {
		t.Fatalf("month leaderboard failed: %v", err)
	}
	if len(month) != 2 {
		t.Errorf("8-day-old result must appear in the month range, got %d entries", len(month))
	}

	all, err := svc.GetLeaderboard(model.ContentTest, 5, RangeAll)
	if err != nil {
		t.Fatalf("all-time leaderboard failed: %v", err)
	}
	if !source.since.IsZero() {
		t.Errorf("all-time range must not cut off, got since=%v", source.since)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 all-time entries, got %d", len(all))
	}
}

func TestGetLeaderboardInvalidRange(t *testing.T) {
	svc := NewLeaderboardService(&fakeResultSource{}, nil)
	if _, err := svc.GetLeaderboard(model.ContentTest, 5, "decade"); !errors.Is(err, util.ErrInvalidTimeRange) {
		t.Errorf("expected ErrInvalidTimeRange, got %v", err)
	}
}
