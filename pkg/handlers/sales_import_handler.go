package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"smartstore-ai-api/pkg/models"
	"smartstore-ai-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// SalesImportHandler 売上ファイル取り込みハンドラー
type SalesImportHandler struct {
	forecastService *services.ForecastService
}

// NewSalesImportHandler 新しい売上ファイル取り込みハンドラーを作成
func NewSalesImportHandler(forecastService *services.ForecastService) *SalesImportHandler {
	return &SalesImportHandler{
		forecastService: forecastService,
	}
}

// ImportAndForecast アップロードされた売上ファイル（.xlsx/.csv）を解析し、
// 有効な行だけを予測エンジンに渡す。不正な行はスキップ数として報告する。
func (sh *SalesImportHandler) ImportAndForecast(c *gin.Context) {
	c.Request.ParseMultipartForm(10 << 20) // 10MB limit

	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ファイルの取得に失敗しました。"})
		return
	}
	defer file.Close()

	var rows [][]string
	fileName := fileHeader.Filename

	if strings.HasSuffix(strings.ToLower(fileName), ".xlsx") {
		f, err := excelize.OpenReader(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excelファイルの読み込みに失敗しました。"})
			return
		}
		defer f.Close()
		rows, err = f.GetRows(f.GetSheetName(0))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Excelシートの行取得に失敗しました。"})
			return
		}
	} else if strings.HasSuffix(strings.ToLower(fileName), ".csv") {
		r := csv.NewReader(file)
		r.FieldsPerRecord = -1
		rows, err = r.ReadAll()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "CSVファイルの解析に失敗しました。"})
			return
		}
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "サポートされていないファイル形式です。.xlsxまたは.csvをアップロードしてください。"})
		return
	}

	if len(rows) < 2 { // Header + at least one data row
		c.JSON(http.StatusBadRequest, gin.H{"error": "ファイルにはヘッダー行と少なくとも1行のデータが必要です。"})
		return
	}

	header := rows[0]
	dataRows := rows[1:]

	dateColIdx := findIndex(header, "date", "sales date", "日付")
	qtyColIdx := findIndex(header, "qty", "quantity", "sales", "units sold", "数量", "販売数")

	var missingCols []string
	if dateColIdx == -1 {
		missingCols = append(missingCols, "date")
	}
	if qtyColIdx == -1 {
		missingCols = append(missingCols, "qty")
	}
	if len(missingCols) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "必要な列が見つかりませんでした: " + strings.Join(missingCols, ", "),
		})
		return
	}

	records := make([]models.SalesRecord, 0, len(dataRows))
	skipped := 0
	for _, row := range dataRows {
		record, ok := parseSalesRow(row, dateColIdx, qtyColIdx)
		if !ok {
			skipped++
			continue
		}
		records = append(records, record)
	}

	result := sh.forecastService.ForecastFromRecords(records)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"forecast": result,
		"import": models.ImportSummary{
			ReportID:    uuid.New().String(),
			FileName:    fileName,
			RowsRead:    len(records),
			RowsSkipped: skipped,
		},
	})
}

// parseSalesRow 1行を検証する。失敗はこの行のスキップのみを意味する。
func parseSalesRow(row []string, dateColIdx, qtyColIdx int) (models.SalesRecord, bool) {
	if dateColIdx >= len(row) || qtyColIdx >= len(row) {
		return models.SalesRecord{}, false
	}

	date := strings.TrimSpace(row[dateColIdx])
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return models.SalesRecord{}, false
	}

	qty, err := strconv.ParseFloat(strings.TrimSpace(row[qtyColIdx]), 64)
	if err != nil || qty < 0 {
		return models.SalesRecord{}, false
	}

	return models.SalesRecord{Date: date, Qty: int(qty)}, true
}

// findIndex finds the index of the first candidate in a slice
func findIndex(slice []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, item := range slice {
			if strings.EqualFold(strings.TrimSpace(item), candidate) {
				return i
			}
		}
	}
	return -1
}
