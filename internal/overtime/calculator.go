// Package overtime 将原始打卡转换为常规/加班/双倍加班工时。
//
// 计算器是纯函数：不读写存储、不依赖全局状态。周内累计工时由调用方
// （周重算协调器）显式传入。
package overtime

import (
	"fmt"
	"strings"
	"time"

	"inv-timesheet/backend/config"
	pkgerrors "inv-timesheet/backend/pkg/errors"
)

// Policy 加班阈值
type Policy struct {
	WeeklyThreshold      Quarters
	DailyThreshold       Quarters
	DailyDoubleThreshold Quarters
	MaxShift             Quarters
}

// DefaultPolicy 40h/周、8h/日、12h/日双倍、单班 24h 上限
func DefaultPolicy() Policy {
	return Policy{
		WeeklyThreshold:      160,
		DailyThreshold:       32,
		DailyDoubleThreshold: 48,
		MaxShift:             96,
	}
}

// PolicyFromConfig 由配置构造阈值（配置加载时已校验为 0.25 的整数倍）
func PolicyFromConfig(cfg *config.OvertimeConfig) Policy {
	return Policy{
		WeeklyThreshold:      RoundToQuarter(cfg.WeeklyThresholdHours),
		DailyThreshold:       RoundToQuarter(cfg.DailyThresholdHours),
		DailyDoubleThreshold: RoundToQuarter(cfg.DailyDoubleThresholdHours),
		MaxShift:             RoundToQuarter(cfg.MaxShiftHours),
	}
}

// ManualHours 手动修正时由操作人直接给出的工时
type ManualHours struct {
	Regular     float64
	Overtime    float64
	DailyDouble float64
	Total       float64
}

// DayInput 单日原始输入
type DayInput struct {
	TimeIn           *time.Time
	TimeOut          *time.Time
	BreakHours       float64
	IsManualOverride bool
	OverrideReason   string
	Manual           ManualHours
}

// WeekContext 本周当日之前（不含当日）的累计工时
type WeekContext struct {
	HoursBefore float64
}

// Breakdown 计算结果，所有字段均为 0.25 的整数倍
type Breakdown struct {
	Regular                  float64 `json:"regular_hours"`
	Overtime                 float64 `json:"overtime_hours"`
	DailyDouble              float64 `json:"daily_double_overtime_hours"`
	Total                    float64 `json:"total_hours"`
	Method                   Method  `json:"calculation_method"`
	WeeklyHoursAtCalculation float64 `json:"weekly_hours_at_calculation"`
}

// Calculator 工时计算器
type Calculator struct {
	policy Policy
}

// NewCalculator 创建计算器
func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

// Policy 返回当前阈值
func (c *Calculator) Policy() Policy { return c.policy }

// Calculate 计算单日工时拆分
func (c *Calculator) Calculate(in DayInput, cls Classification, week WeekContext) (Breakdown, error) {
	before := RoundToQuarter(week.HoursBefore)
	if before < 0 {
		before = 0
	}

	// 1. 豁免员工：不计加班
	if cls.Exempt() {
		total, err := c.dayTotal(in)
		if err != nil {
			return Breakdown{}, err
		}
		return build(total, 0, 0, MethodExempt, before), nil
	}

	// 2. 手动修正：跳过计算，仅校验
	if in.IsManualOverride {
		m, err := c.ValidateManual(in)
		if err != nil {
			return Breakdown{}, err
		}
		return Breakdown{
			Regular:                  m.Regular,
			Overtime:                 m.Overtime,
			DailyDouble:              m.DailyDouble,
			Total:                    m.Total,
			Method:                   MethodManualOverride,
			WeeklyHoursAtCalculation: (before + RoundToQuarter(m.Total)).Hours(),
		}, nil
	}

	// 3-4. 打卡区间 → 量化工时
	hours, err := c.PunchHours(in.TimeIn, in.TimeOut, in.BreakHours)
	if err != nil {
		return Breakdown{}, err
	}

	// 5. 按分类拆分
	switch cls.Method() {
	case MethodWeeklyCumulative:
		regular := maxQ(0, minQ(hours, c.policy.WeeklyThreshold-before))
		return build(regular, hours-regular, 0, MethodWeeklyCumulative, before), nil
	default:
		regular := minQ(hours, c.policy.DailyThreshold)
		overtime := minQ(hours, c.policy.DailyDoubleThreshold) - regular
		double := hours - regular - overtime
		return build(regular, overtime, double, MethodDailyThreshold, before), nil
	}
}

// PunchHours 校验打卡区间并返回量化后的工时
func (c *Calculator) PunchHours(timeIn, timeOut *time.Time, breakHours float64) (Quarters, error) {
	if timeIn == nil || timeOut == nil {
		return 0, fmt.Errorf("%w: 上下班打卡必须同时提供", pkgerrors.ErrInvalidTimeRange)
	}
	if breakHours < 0 {
		return 0, fmt.Errorf("%w: 休息时长不能为负", pkgerrors.ErrInvalidTimeRange)
	}
	if !timeOut.After(*timeIn) {
		return 0, fmt.Errorf("%w: 下班时间必须晚于上班时间", pkgerrors.ErrInvalidTimeRange)
	}
	raw := timeOut.Sub(*timeIn).Hours() - breakHours
	if raw < 0 {
		return 0, fmt.Errorf("%w: 休息时长超过在岗时长", pkgerrors.ErrInvalidTimeRange)
	}
	if raw > c.policy.MaxShift.Hours() {
		return 0, fmt.Errorf("%w: 单日工时 %.2f 超过上限 %.2f", pkgerrors.ErrInvalidTimeRange, raw, c.policy.MaxShift.Hours())
	}
	return RoundToQuarter(raw), nil
}

// ValidateManual 校验手动修正：原因必填、非负、量化、分项之和等于合计
func (c *Calculator) ValidateManual(in DayInput) (ManualHours, error) {
	if strings.TrimSpace(in.OverrideReason) == "" {
		return ManualHours{}, pkgerrors.ErrMissingOverrideReason
	}
	m := in.Manual
	var parts [3]Quarters
	var sum Quarters
	for i, v := range []float64{m.Regular, m.Overtime, m.DailyDouble} {
		if v < 0 {
			return ManualHours{}, fmt.Errorf("%w: 手动工时不能为负", pkgerrors.ErrInvalidTimeRange)
		}
		q, ok := ToQuarters(v)
		if !ok {
			return ManualHours{}, pkgerrors.ErrHoursNotQuantized
		}
		parts[i] = q
		sum += q
	}
	total, ok := ToQuarters(m.Total)
	if !ok {
		return ManualHours{}, pkgerrors.ErrHoursNotQuantized
	}
	if total != sum {
		return ManualHours{}, fmt.Errorf("%w: 合计 %.2f，分项之和 %.2f", pkgerrors.ErrManualTotalMismatch, m.Total, sum.Hours())
	}
	if total > c.policy.MaxShift {
		return ManualHours{}, fmt.Errorf("%w: 单日工时 %.2f 超过上限", pkgerrors.ErrInvalidTimeRange, m.Total)
	}
	// 返回量化后的值，容忍范围内的浮点尾差不落库
	return ManualHours{
		Regular:     parts[0].Hours(),
		Overtime:    parts[1].Hours(),
		DailyDouble: parts[2].Hours(),
		Total:       total.Hours(),
	}, nil
}

// dayTotal 豁免员工的当日总工时：手动修正取合计，否则取打卡工时
func (c *Calculator) dayTotal(in DayInput) (Quarters, error) {
	if in.IsManualOverride {
		m, err := c.ValidateManual(in)
		if err != nil {
			return 0, err
		}
		return RoundToQuarter(m.Total), nil
	}
	return c.PunchHours(in.TimeIn, in.TimeOut, in.BreakHours)
}

func build(regular, overtime, double Quarters, method Method, before Quarters) Breakdown {
	total := regular + overtime + double
	return Breakdown{
		Regular:                  regular.Hours(),
		Overtime:                 overtime.Hours(),
		DailyDouble:              double.Hours(),
		Total:                    total.Hours(),
		Method:                   method,
		WeeklyHoursAtCalculation: (before + total).Hours(),
	}
}
