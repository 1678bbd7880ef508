package schedule

import (
	"time"

	"GoalPulse/utils"
)

// Schedule 决定一个任务的下一次触发时刻
type Schedule interface {
	Next(now time.Time) time.Time
}

// IntervalSchedule 固定间隔触发
type IntervalSchedule struct {
	Every time.Duration
}

func (s IntervalSchedule) Next(now time.Time) time.Time {
	return now.Add(s.Every)
}

// DailySchedule 每天固定时刻触发（格式 HH:MM:SS）
type DailySchedule struct {
	At string
}

func (s DailySchedule) Next(now time.Time) time.Time {
	next, err := utils.ParseTime(s.At, now)
	if err != nil {
		next = now
	}
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// WeeklySchedule 每周固定星期的固定时刻触发
type WeeklySchedule struct {
	At      string
	Weekday time.Weekday
}

func (s WeeklySchedule) Next(now time.Time) time.Time {
	daysAhead := (int(s.Weekday) - int(now.Weekday()) + 7) % 7
	candidate, err := utils.ParseTime(s.At, now.AddDate(0, 0, daysAhead))
	if err != nil {
		candidate = now.AddDate(0, 0, daysAhead)
	}
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// MonthlySchedule 每月固定日期的固定时刻触发，日期超过当月天数时取月末
type MonthlySchedule struct {
	At  string
	Day int
}

func (s MonthlySchedule) Next(now time.Time) time.Time {
	candidate := s.inMonth(now.Year(), now.Month(), now.Location())
	if !candidate.After(now) {
		next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
		candidate = s.inMonth(next.Year(), next.Month(), now.Location())
	}
	return candidate
}

func (s MonthlySchedule) inMonth(year int, month time.Month, loc *time.Location) time.Time {
	day := s.Day
	if day < 1 {
		day = 1
	}
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > lastDay {
		day = lastDay
	}

	date := time.Date(year, month, day, 0, 0, 0, 0, loc)
	at, err := utils.ParseTime(s.At, date)
	if err != nil {
		return date
	}
	return at
}
