package handlers

import (
	"net/http"

	"smartstore-ai-api/pkg/models"
	"smartstore-ai-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ForecastHandler 売上予測ハンドラー
type ForecastHandler struct {
	forecastService *services.ForecastService
}

// NewForecastHandler 新しい売上予測ハンドラーを作成
func NewForecastHandler(forecastService *services.ForecastService) *ForecastHandler {
	return &ForecastHandler{
		forecastService: forecastService,
	}
}

// GetForecastService は、ハンドラーが持つ予測サービスへの参照を返す
func (fh *ForecastHandler) GetForecastService() *services.ForecastService {
	return fh.forecastService
}

// ForecastSales 販売履歴から7日間の売上予測を実行。
// 呼び出し側はHTTPステータスではなくstatusフィールドで結果を判定する。
func (fh *ForecastHandler) ForecastSales(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusOK, models.ForecastResult{
			Prediction: 0,
			Status:     models.ForecastStatusError,
		})
		return
	}

	result := fh.forecastService.ForecastDailySales(raw)
	c.JSON(http.StatusOK, result)
}

// GetForecastSettings 予測設定を取得
func (fh *ForecastHandler) GetForecastSettings(c *gin.Context) {
	settings := gin.H{
		"horizon_days":       fh.forecastService.Horizon(),
		"synthetic_fallback": fh.forecastService.SyntheticFallbackEnabled(),
		"statuses": []string{
			models.ForecastStatusSuccess,
			models.ForecastStatusSimulated,
			models.ForecastStatusAverage,
			models.ForecastStatusInsufficientData,
			models.ForecastStatusError,
		},
		"record_format": gin.H{
			"date": "YYYY-MM-DD",
			"qty":  "non-negative integer",
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settings,
	})
}
