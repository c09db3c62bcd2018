package overtime

import "math"

// Quarters 以 0.25 小时为单位的工时，计算全程使用整数避免浮点漂移
type Quarters int64

// 浮点误差容忍度，避免 7.125 这类边界值因表示误差落到错误一侧
const roundingEpsilon = 1e-9

// RoundToQuarter 四舍五入到最近的 0.25 小时（恰好居中时向上取整）
func RoundToQuarter(hours float64) Quarters {
	return Quarters(math.Floor(hours*4 + 0.5 + roundingEpsilon))
}

// ToQuarters 将已量化的工时转换为整数单位；未量化时返回 false
func ToQuarters(hours float64) (Quarters, bool) {
	scaled := hours * 4
	q := math.Round(scaled)
	if math.Abs(scaled-q) > roundingEpsilon {
		return 0, false
	}
	return Quarters(q), true
}

// IsQuantized 判断工时是否为 0.25 的整数倍
func IsQuantized(hours float64) bool {
	_, ok := ToQuarters(hours)
	return ok
}

// Hours 转换回小时
func (q Quarters) Hours() float64 { return float64(q) / 4 }

func maxQ(a, b Quarters) Quarters {
	if a > b {
		return a
	}
	return b
}

func minQ(a, b Quarters) Quarters {
	if a < b {
		return a
	}
	return b
}
