package services

import (
	"fmt"

	"smartstore-ai-api/pkg/models"
)

// FitLine 最小二乗法で直線をフィットする（閉形式の正規方程式）
func FitLine(points []models.SeriesPoint) (*models.RegressionModel, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("回帰には最低2点のデータが必要です")
	}

	n := float64(len(points))
	var sumX, sumY, sumXY, sumX2 float64

	for _, p := range points {
		x := float64(p.DayOffset)
		sumX += x
		sumY += p.Qty
		sumXY += x * p.Qty
		sumX2 += x * x
	}

	// 分母が0 = 全データが同一日（垂直線）なのでフィット不能
	d := n*sumX2 - sumX*sumX
	if d == 0 {
		return nil, fmt.Errorf("全データが同一日のため直線をフィットできません")
	}

	slope := (n*sumXY - sumX*sumY) / d
	intercept := (sumY - slope*sumX) / n

	return &models.RegressionModel{
		Slope:     slope,
		Intercept: intercept,
	}, nil
}

// ProjectTotal フィット済みの直線で lastDay の翌日から horizon 日分を予測し合計する。
// 各日の予測値は加算前に0でクランプし、合計は0方向へ切り捨てる（販売数は整数単位）。
func ProjectTotal(model *models.RegressionModel, lastDay int, horizon int) int {
	var total float64
	for i := 1; i <= horizon; i++ {
		predicted := model.Slope*float64(lastDay+i) + model.Intercept
		if predicted > 0 {
			total += predicted
		}
	}
	return int(total)
}

// ProjectFlatTotal 平均値によるフラット予測（退化ケースのフォールバック）
func ProjectFlatTotal(points []models.SeriesPoint, horizon int) int {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Qty
	}
	mean := sum / float64(len(points))
	if mean < 0 {
		return 0
	}
	return int(mean * float64(horizon))
}
