package services

import (
	"bytes"
	"encoding/json"
	"log"
	"math/rand"
	"strconv"
	"time"

	"smartstore-ai-api/pkg/models"
)

const (
	// DefaultBaselineQty 実データが1件もない場合の合成履歴の基準販売数
	DefaultBaselineQty = 10
	// SyntheticHistoryDays 合成履歴の日数（「今日」の前日まで）
	SyntheticHistoryDays = 5
	// syntheticNoiseRange 合成履歴に乗せるノイズの幅（±5）
	syntheticNoiseRange = 5
)

// ForecastService 売上予測サービス
type ForecastService struct {
	horizon           int
	syntheticFallback bool
	rng               *rand.Rand
	now               func() time.Time
}

// NewForecastService 新しい売上予測サービスを作成。
// rng は合成履歴の再現性のために注入する（テストでは固定シードを渡す）。
func NewForecastService(horizon int, syntheticFallback bool, rng *rand.Rand) *ForecastService {
	if horizon <= 0 {
		horizon = 7
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ForecastService{
		horizon:           horizon,
		syntheticFallback: syntheticFallback,
		rng:               rng,
		now:               time.Now,
	}
}

// ForecastDailySales 販売履歴から今後の販売合計を予測する。
// リクエストは常に整形済みのレスポンスで応答し、内部エラーはstatusフィールドで表現する。
func (s *ForecastService) ForecastDailySales(raw []byte) (result models.ForecastResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("売上予測リクエストの解析中に予期しないエラーが発生: %v", r)
			result = models.ForecastResult{Prediction: 0, Status: models.ForecastStatusError}
		}
	}()

	return s.ForecastFromRecords(s.ParseHistory(raw))
}

// ForecastFromRecords 検証済みレコード列から予測を実行する
func (s *ForecastService) ForecastFromRecords(records []models.SalesRecord) (result models.ForecastResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("売上予測の計算中に予期しないエラーが発生: %v", r)
			result = models.ForecastResult{Prediction: 0, Status: models.ForecastStatusError}
		}
	}()

	status := models.ForecastStatusSuccess

	// 実データ2点未満はコールドスタート扱い
	if len(records) < 2 {
		if !s.syntheticFallback {
			return models.ForecastResult{Prediction: 0, Status: models.ForecastStatusInsufficientData}
		}
		baseline := DefaultBaselineQty
		if len(records) > 0 {
			baseline = records[0].Qty
		}
		records = s.GenerateSyntheticHistory(baseline)
		status = models.ForecastStatusSimulated
	}

	points, lastDay := NormalizeSeries(records)

	model, err := FitLine(points)
	if err != nil {
		// 全データが同一日：平均値によるフラット予測に切り替える
		return models.ForecastResult{
			Prediction: ProjectFlatTotal(points, s.horizon),
			Status:     models.ForecastStatusAverage,
		}
	}

	return models.ForecastResult{
		Prediction: ProjectTotal(model, lastDay, s.horizon),
		Status:     status,
	}
}

// Horizon 予測日数を返す
func (s *ForecastService) Horizon() int {
	return s.horizon
}

// SyntheticFallbackEnabled 合成履歴フォールバックが有効かどうかを返す
func (s *ForecastService) SyntheticFallbackEnabled() bool {
	return s.syntheticFallback
}

// ParseHistory リクエストボディを検証済みのSalesRecord列に変換する。
// 配列・単一オブジェクト・{"history": [...]} ラッパーのいずれも受け付け、
// 解析できないレコードは個別に切り捨てる（リクエスト全体のエラーにはしない）。
func (s *ForecastService) ParseHistory(raw []byte) []models.SalesRecord {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	// ダッシュボード側は {"history": [...]} 形式で送信してくる
	if raw[0] == '{' {
		var wrapper struct {
			History json.RawMessage `json:"history"`
		}
		if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.History) > 0 {
			raw = bytes.TrimSpace(wrapper.History)
		}
	}

	var elements []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &elements); err != nil {
			return nil
		}
	} else {
		// 単一オブジェクトは1要素の列として扱う
		elements = []json.RawMessage{raw}
	}

	records := make([]models.SalesRecord, 0, len(elements))
	for _, element := range elements {
		if record, ok := parseSalesRecord(element); ok {
			records = append(records, record)
		}
	}
	return records
}

// parseSalesRecord 1レコードを検証する。失敗はこのレコードの切り捨てのみを意味する。
func parseSalesRecord(raw json.RawMessage) (models.SalesRecord, bool) {
	var rec struct {
		Date string          `json:"date"`
		Qty  json.RawMessage `json:"qty"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.SalesRecord{}, false
	}
	if rec.Date == "" || len(rec.Qty) == 0 {
		return models.SalesRecord{}, false
	}
	if _, err := time.Parse("2006-01-02", rec.Date); err != nil {
		return models.SalesRecord{}, false
	}
	qty, ok := parseQuantity(rec.Qty)
	if !ok || qty < 0 {
		return models.SalesRecord{}, false
	}
	return models.SalesRecord{Date: rec.Date, Qty: qty}, true
}

// parseQuantity 数値または数値文字列の販売数を受け付ける
func parseQuantity(raw json.RawMessage) (int, bool) {
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return int(number), true
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if parsed, err := strconv.ParseFloat(text, 64); err == nil {
			return int(parsed), true
		}
	}
	return 0, false
}

// NormalizeSeries レコード列を (経過日数, 販売数) のペアに変換する。
// 経過日数はバッチ内の最小日付を原点とするため、必ず1点はオフセット0になる。
func NormalizeSeries(records []models.SalesRecord) ([]models.SeriesPoint, int) {
	if len(records) == 0 {
		return nil, 0
	}

	dates := make([]time.Time, len(records))
	minDate := time.Time{}
	for i, record := range records {
		t, _ := time.Parse("2006-01-02", record.Date)
		dates[i] = t
		if minDate.IsZero() || t.Before(minDate) {
			minDate = t
		}
	}

	points := make([]models.SeriesPoint, len(records))
	lastDay := 0
	for i, record := range records {
		offset := int(dates[i].Sub(minDate).Hours() / 24)
		points[i] = models.SeriesPoint{DayOffset: offset, Qty: float64(record.Qty)}
		if offset > lastDay {
			lastDay = offset
		}
	}
	return points, lastDay
}

// GenerateSyntheticHistory コールドスタート用の合成履歴を生成する。
// 「今日」の前日を最終日として5日分、baseline±5（最低1）の販売数を作る。
func (s *ForecastService) GenerateSyntheticHistory(baseline int) []models.SalesRecord {
	today := s.now()
	records := make([]models.SalesRecord, 0, SyntheticHistoryDays)

	for i := SyntheticHistoryDays; i >= 1; i-- {
		qty := baseline + s.rng.Intn(2*syntheticNoiseRange+1) - syntheticNoiseRange
		if qty < 1 {
			qty = 1
		}
		records = append(records, models.SalesRecord{
			Date: today.AddDate(0, 0, -i).Format("2006-01-02"),
			Qty:  qty,
		})
	}
	return records
}
