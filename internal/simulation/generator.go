package simulation

import (
	"math"
	"math/rand"
)

// GenerateValue 在 [min, max] 内均匀取值，保留两位小数
// 四舍五入可能越界，结果再夹回区间。调用方保证 min <= max
func GenerateValue(min, max float64) float64 {
	v := min + rand.Float64()*(max-min)
	return clamp(round2(v), min, max)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
