package service

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"elearn_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 榜单时间范围
const (
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeYear  = "year"
	RangeAll   = "all"
)

const leaderboardCacheTTL = 30 * time.Second

// ResultSource 榜单数据读取口径
type ResultSource interface {
	ListForLeaderboard(contentType model.ContentType, contentID uint, since time.Time) ([]model.Result, error)
}

// LeaderboardEntry 榜单条目，读时计算，不落库
type LeaderboardEntry struct {
	StudentID    uint      `json:"studentId"`
	StudentName  string    `json:"studentName"`
	CourseID     uint      `json:"courseId"`
	TestID       *uint     `json:"testId,omitempty"`
	AssignmentID *uint     `json:"assignmentId,omitempty"`
	Score        int       `json:"score"`
	CompletedAt  time.Time `json:"completedAt"`
	Rank         int       `json:"rank"`
}

type LeaderboardService struct {
	Results ResultSource
	Redis   *redis.Client // 可为 nil，nil 时直接查库
	nowFn   func() time.Time
}

func NewLeaderboardService(results ResultSource, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{
		Results: results,
		Redis:   rdb,
		nowFn:   time.Now,
	}
}

// GetLeaderboard 产出指定内容类型（可选具体内容）在时间范围内的排名。
// 排名规则：同分同名次，下一不同分数的名次按已占条目数顺延（1,1,3,4）。
// 0 分也是有效条目。Redis 缓存短 TTL，未命中或不可用时回退查库。
func (s *LeaderboardService) GetLeaderboard(contentType model.ContentType, contentID uint, timeRange string) ([]LeaderboardEntry, error) {
	since, err := s.rangeCutoff(timeRange)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("leaderboard:%s:%d:%s", contentType, contentID, timeRange)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(context.Background(), cacheKey).Result(); err == nil {
			var entries []LeaderboardEntry
			if json.Unmarshal([]byte(cached), &entries) == nil {
				return entries, nil
			}
		}
	}

	results, err := s.Results.ListForLeaderboard(contentType, contentID, since)
	if err != nil {
		return nil, err
	}

	entries := Rank(results)

	if s.Redis != nil {
		if raw, err := json.Marshal(entries); err == nil {
			if err := s.Redis.Set(context.Background(), cacheKey, raw, leaderboardCacheTTL).Err(); err != nil {
				logger.Log.Warn("failed to cache leaderboard", zap.Error(err))
			}
		}
	}

	return entries, nil
}

// Rank 纯排名函数：按 (student, content) 去重保留最新提交，
// 按分数降序排序后打竞赛名次。
func Rank(results []model.Result) []LeaderboardEntry {
	// 去重：同一学生对同一内容只留最近一次提交
	type dedupeKey struct {
		studentID uint
		contentID uint
	}
	latest := make(map[dedupeKey]model.Result)
	for _, r := range results {
		key := dedupeKey{studentID: r.StudentID, contentID: r.ContentRef()}
		if prev, ok := latest[key]; !ok || r.SubmittedAt.After(prev.SubmittedAt) {
			latest[key] = r
		}
	}

	entries := make([]LeaderboardEntry, 0, len(latest))
	for _, r := range latest {
		entry := LeaderboardEntry{
			StudentID:    r.StudentID,
			CourseID:     r.CourseID,
			TestID:       r.TestID,
			AssignmentID: r.AssignmentID,
			Score:        r.Score,
			CompletedAt:  r.SubmittedAt,
		}
		if r.Student != nil {
			entry.StudentName = r.Student.Name
		}
		entries = append(entries, entry)
	}

	// 分数降序；同分按提交时间先后，再按学号，保证输出确定
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if !entries[i].CompletedAt.Equal(entries[j].CompletedAt) {
			return entries[i].CompletedAt.Before(entries[j].CompletedAt)
		}
		return entries[i].StudentID < entries[j].StudentID
	})

	// 竞赛名次：并列不占后续名次槽位
	for i := range entries {
		if i > 0 && entries[i].Score == entries[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}

	return entries
}

func (s *LeaderboardService) rangeCutoff(timeRange string) (time.Time, error) {
	now := s.nowFn()
	switch timeRange {
	case RangeWeek:
		return now.AddDate(0, 0, -7), nil
	case RangeMonth:
		return now.AddDate(0, 0, -30), nil
	case RangeYear:
		return now.AddDate(0, 0, -365), nil
	case RangeAll, "":
		return time.Time{}, nil
	default:
		return time.Time{}, util.ErrInvalidTimeRange
	}
}
