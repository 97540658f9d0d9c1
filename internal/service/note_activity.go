package service

import (
	"context"
	"fmt"
	"time"

	"github.com/haierkeys/flownote-service/internal/domain"
	"github.com/haierkeys/flownote-service/internal/dto"
	"github.com/haierkeys/flownote-service/pkg/util"
)

const (
	activityWeeks       = 5
	activityMonthLabels = 3
)

// ActivityLevel buckets a daily note count: 0, 1, 2-3, 4-5, 6+ → 0..4
// ActivityLevel 将每日笔记数映射为 0..4 级
func ActivityLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count <= 3:
		return 2
	case count <= 5:
		return 3
	}
	return 4
}

// BuildActivity lays out five Monday-first weeks ending on the Sunday of now's week
// Days are bucketed in now's location
// BuildActivity 生成以周一开始、截止到 now 所在周周日的五周网格
func BuildActivity(notes []*domain.Note, now time.Time) *dto.ActivityDTO {
	loc := now.Location()
	counts := make(map[string]int, len(notes))
	var first time.Time
	for _, n := range notes {
		if n.CreatedAt.IsZero() {
			continue
		}
		created := n.CreatedAt.In(loc)
		counts[created.Format(util.DateLayout)]++
		if first.IsZero() || created.Before(first) {
			first = created
		}
	}

	today := now.Format(util.DateLayout)
	start := util.GetWeekStart(now).AddDate(0, 0, -7*(activityWeeks-1))

	weeks := make([][]dto.ActivityDayDTO, 0, activityWeeks)
	var months []string
	seenMonth := make(map[string]bool)
	for w := 0; w < activityWeeks; w++ {
		week := make([]dto.ActivityDayDTO, 0, 7)
		for d := 0; d < 7; d++ {
			day := start.AddDate(0, 0, w*7+d)
			key := day.Format(util.DateLayout)
			week = append(week, dto.ActivityDayDTO{
				Date:    key,
				Count:   counts[key],
				Level:   ActivityLevel(counts[key]),
				IsToday: key == today,
			})

			label := fmt.Sprintf("%d月", int(day.Month()))
			if !seenMonth[label] {
				seenMonth[label] = true
				months = append(months, label)
			}
		}
		weeks = append(weeks, week)
	}
	if len(months) > activityMonthLabels {
		months = months[len(months)-activityMonthLabels:]
	}

	stats := dto.ActivityStatsDTO{
		NoteCount: len(notes),
		TagCount:  len(collectTags(notes)),
	}
	if !first.IsZero() {
		if days := util.DaysBetween(first, now); days > 0 {
			stats.DaysSinceFirst = days
		}
	}

	return &dto.ActivityDTO{Weeks: weeks, MonthLabels: months, Stats: stats}
}

// Activity 活跃度
func (s *noteService) Activity(ctx context.Context, identity domain.Identity, now time.Time) (*dto.ActivityDTO, error) {
	notes, err := s.collection(ctx, identity)
	if err != nil {
		return nil, err
	}
	return BuildActivity(notes, now), nil
}
