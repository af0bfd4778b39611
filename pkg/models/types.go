package models

// SalesRecord 1日分の販売実績
type SalesRecord struct {
	Date string `json:"date"` // YYYY-MM-DD
	Qty  int    `json:"qty"`
}

// SeriesPoint 基準日からの経過日数と販売数のペア（回帰の入力）
type SeriesPoint struct {
	DayOffset int     `json:"day_offset"`
	Qty       float64 `json:"qty"`
}

// RegressionModel 最小二乗法で求めた直線
type RegressionModel struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// 予測結果のステータス
const (
	ForecastStatusSuccess          = "success"           // 実データによる回帰予測
	ForecastStatusSimulated        = "success_simulated" // 合成履歴によるコールドスタート予測
	ForecastStatusAverage          = "average"           // 退化ケース：平均値によるフラット予測
	ForecastStatusInsufficientData = "insufficient_data" // 利用可能なデータなし
	ForecastStatusError            = "error"             // 予期しない失敗
)

// ForecastResult 7日間予測の結果
type ForecastResult struct {
	Prediction int    `json:"prediction"`
	Status     string `json:"status"`
}

// ClassifyRequest 意図分類リクエスト
type ClassifyRequest struct {
	Query string `json:"query"`
}

// ClassificationResult 意図分類の結果
type ClassificationResult struct {
	Intent string `json:"intent"`
}

// IntentUnknown 閾値に届かなかった場合の番兵ラベル
const IntentUnknown = "UNKNOWN"

// ChatRequest ダッシュボードアシスタントへの質問
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatAnswer アシスタントの応答
type ChatAnswer struct {
	Answer string `json:"answer"`
	Intent string `json:"intent"`
}

// ImportSummary 売上ファイル取り込みのサマリー
type ImportSummary struct {
	ReportID    string `json:"report_id"`
	FileName    string `json:"file_name"`
	RowsRead    int    `json:"rows_read"`
	RowsSkipped int    `json:"rows_skipped"`
}
