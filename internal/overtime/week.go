package overtime

import (
	"fmt"
	"time"
)

// Week ISO 周（周一至周日）。Start 为周一 00:00 UTC，End 为下周一 00:00 UTC（不含）。
type Week struct {
	Year   int
	Number int
	Start  time.Time
	End    time.Time
}

// CalendarDate 取 t 的年月日，规范为 UTC 零点（与 DATE 列一致）
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WorkDateIn 返回打卡时间在员工时区下的日历日。跨零点班次整体归属上班日期。
func WorkDateIn(timeIn time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return CalendarDate(timeIn.In(loc))
}

// WeekOf 返回包含 date 的 ISO 周
func WeekOf(date time.Time) Week {
	d := CalendarDate(date)
	wd := int(d.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := d.AddDate(0, 0, -(wd - 1))
	year, number := d.ISOWeek()
	return Week{
		Year:   year,
		Number: number,
		Start:  monday,
		End:    monday.AddDate(0, 0, 7),
	}
}

// Label 形如 "2026-W42"
func (w Week) Label() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Number)
}

// Contains 判断日期是否落在本周
func (w Week) Contains(date time.Time) bool {
	d := CalendarDate(date)
	return !d.Before(w.Start) && d.Before(w.End)
}

// LockKey 员工周维度的互斥键
func LockKey(employeeID string, w Week) string {
	return "timesheet:week:" + employeeID + ":" + w.Label()
}
