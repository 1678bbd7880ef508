package recurrence

// 重复频率的下一次排期计算。纯函数，调度引擎和系列生成器共用。

import (
	"strings"
	"time"

	pkgerrors "GoalPulse/pkg/errors"
)

// Frequency 打卡重复频率枚举
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiWeekly Frequency = "bi-weekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyCustom   Frequency = "custom"
)

// Rule 完整的重复规则。Custom 频率时 Days/Hours 生效，其余频率忽略。
type Rule struct {
	Frequency   Frequency
	CustomDays  int
	CustomHours int
}

// ParseFrequency 校验输入边界的频率值。
// 存量数据里未知频率由 Next 按 weekly 兜底，但新输入一律拒绝，
// 避免静默兜底把录入错误固化进数据库。
func ParseFrequency(raw string) (Frequency, error) {
	switch Frequency(strings.ToLower(strings.TrimSpace(raw))) {
	case FrequencyDaily:
		return FrequencyDaily, nil
	case FrequencyWeekly:
		return FrequencyWeekly, nil
	case FrequencyBiWeekly:
		return FrequencyBiWeekly, nil
	case FrequencyMonthly:
		return FrequencyMonthly, nil
	case FrequencyCustom:
		return FrequencyCustom, nil
	default:
		return "", pkgerrors.FrequencyInvalid
	}
}

// Next 根据锚点时间和规则计算下一次排期。
// 锚点必须是原定排期时间而不是完成时间，晚打卡不允许把节奏漂移掉。
func Next(anchor time.Time, rule Rule) time.Time {
	switch rule.Frequency {
	case FrequencyDaily:
		return anchor.AddDate(0, 0, 1)
	case FrequencyBiWeekly:
		return anchor.AddDate(0, 0, 14)
	case FrequencyMonthly:
		return nextMonthly(anchor)
	case FrequencyCustom:
		if rule.CustomDays == 0 && rule.CustomHours == 0 {
			// custom{0,0} 文档化兜底为 weekly，不算错误
			return anchor.AddDate(0, 0, 7)
		}
		return anchor.AddDate(0, 0, rule.CustomDays).
			Add(time.Duration(rule.CustomHours) * time.Hour)
	case FrequencyWeekly:
		return anchor.AddDate(0, 0, 7)
	default:
		// 存量未知频率按 weekly 兜底；新输入在 ParseFrequency 已拦截
		return anchor.AddDate(0, 0, 7)
	}
}

// nextMonthly 加一个日历月并保留 day-of-month。
// time.AddDate 对短月会归一化溢出（Jan 31 -> Mar 2/3），
// 这里显式钳制到目标月最后一天。
func nextMonthly(anchor time.Time) time.Time {
	year, month, day := anchor.Date()

	targetMonth := month + 1
	targetYear := year
	if targetMonth > time.December {
		targetMonth = time.January
		targetYear++
	}

	if last := daysIn(targetYear, targetMonth); day > last {
		day = last
	}

	return time.Date(targetYear, targetMonth, day,
		anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(),
		anchor.Location())
}

func daysIn(year int, month time.Month) int {
	// 下月第 0 天即本月最后一天
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
