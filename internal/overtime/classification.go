package overtime

import (
	"fmt"
	"strings"

	pkgerrors "inv-timesheet/backend/pkg/errors"
)

// Kind 加班政策类型（封闭枚举，由 Classification Resolver 一次性解析）
type Kind string

const (
	KindFullTime   Kind = "full_time"
	KindPartTime   Kind = "part_time"
	KindContractor Kind = "contractor"
	KindExempt     Kind = "exempt"
)

// Method 工时计算方式，写入 time_entries.calculation_method
type Method string

const (
	MethodWeeklyCumulative Method = "weekly_cumulative"
	MethodDailyThreshold   Method = "daily_threshold"
	MethodManualOverride   Method = "manual_override"
	MethodExempt           Method = "exempt_no_calculation"
)

// Classification 员工加班分类
type Classification struct {
	EmployeeID string
	Kind       Kind
}

// Classify 将员工档案中的用工类型字符串解析为封闭枚举。
// is_exempt 优先于 employment_type。
func Classify(employeeID, employmentType string, isExempt bool) (Classification, error) {
	if isExempt {
		return Classification{EmployeeID: employeeID, Kind: KindExempt}, nil
	}
	switch Kind(strings.ToLower(strings.TrimSpace(employmentType))) {
	case KindFullTime:
		return Classification{EmployeeID: employeeID, Kind: KindFullTime}, nil
	case KindPartTime:
		return Classification{EmployeeID: employeeID, Kind: KindPartTime}, nil
	case KindContractor:
		return Classification{EmployeeID: employeeID, Kind: KindContractor}, nil
	case KindExempt:
		return Classification{EmployeeID: employeeID, Kind: KindExempt}, nil
	default:
		return Classification{}, fmt.Errorf("%w: %q", pkgerrors.ErrUnknownEmploymentType, employmentType)
	}
}

// Exempt 是否豁免加班
func (c Classification) Exempt() bool { return c.Kind == KindExempt }

// Method 非手动修正时该分类采用的计算方式
func (c Classification) Method() Method {
	switch c.Kind {
	case KindExempt:
		return MethodExempt
	case KindFullTime:
		return MethodWeeklyCumulative
	default:
		// 兼职与外包按日阈值计算
		return MethodDailyThreshold
	}
}
