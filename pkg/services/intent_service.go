package services

import (
	"log"
	"regexp"
	"strings"

	"smartstore-ai-api/pkg/models"
)

const (
	// AcceptanceThreshold これを下回るスコアはUNKNOWN扱い
	AcceptanceThreshold = 0.5
	// ContainmentBonus フレーズがクエリに完全包含される場合の加点。
	// 上限なし：短い完全一致が部分一致に必ず勝つようにするための意図的な仕様。
	ContainmentBonus = 0.5
)

var (
	nonAlphanumericPattern = regexp.MustCompile(`[^a-zA-Z0-9\s]+`)
	whitespacePattern      = regexp.MustCompile(`\s+`)
)

// IntentService 自由テキストをダッシュボード操作の意図に分類するサービス
type IntentService struct {
	catalog []IntentDefinition
}

// NewIntentService 新しい意図分類サービスを作成。
// カタログを注入できるため、テストでは小さなカタログに差し替えられる。
func NewIntentService(catalog []IntentDefinition) *IntentService {
	if catalog == nil {
		catalog = DefaultIntentCatalog()
	}
	return &IntentService{catalog: catalog}
}

// Classify クエリを最もスコアの高い意図に分類する。
// 最高スコアが閾値未満、または予期しない失敗時はUNKNOWNを返す。
func (s *IntentService) Classify(query string) (result models.ClassificationResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("意図分類中に予期しないエラーが発生: %v", r)
			result = models.ClassificationResult{Intent: models.IntentUnknown}
		}
	}()

	normalized := NormalizeText(query)
	if normalized == "" {
		return models.ClassificationResult{Intent: models.IntentUnknown}
	}

	bestIntent := models.IntentUnknown
	bestScore := 0.0

	for _, definition := range s.catalog {
		for _, phrase := range definition.Phrases {
			score := SequenceRatio(normalized, phrase)
			if strings.Contains(normalized, phrase) {
				score += ContainmentBonus
			}
			// 同点は先に走査したフレーズが勝つ（カタログ定義順）
			if score > bestScore {
				bestScore = score
				bestIntent = definition.Label
			}
		}
	}

	if bestScore < AcceptanceThreshold {
		return models.ClassificationResult{Intent: models.IntentUnknown}
	}
	return models.ClassificationResult{Intent: bestIntent}
}

// NormalizeText 記号を除去し、連続する空白を1つにまとめ、小文字化する。
// 冪等：2回適用しても結果は変わらない。
func NormalizeText(text string) string {
	stripped := nonAlphanumericPattern.ReplaceAllString(text, "")
	collapsed := whitespacePattern.ReplaceAllString(stripped, " ")
	return strings.ToLower(strings.TrimSpace(collapsed))
}

// SequenceRatio 2文字列の類似度を[0,1]で返す。
// 最長共通連続ブロックを見つけて両側の残りに再帰し、
// ratio = 2 * 一致文字数 / (len(a) + len(b)) を計算する。
func SequenceRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra)+len(rb) == 0 {
		return 0
	}
	matched := matchingRunes(ra, rb)
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingRunes 最長共通連続ブロックの再帰分解で一致文字数を数える
func matchingRunes(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a[:ai], b[:bi]) +
		matchingRunes(a[ai+size:], b[bi+size:])
}

// longestCommonBlock 最長共通連続ブロックの開始位置と長さを返す。
// 長さが同じ候補は a 内で先に現れるものを採用する。
func longestCommonBlock(a, b []rune) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0

	// lengths[j] = a[:i] と b[:j] の末尾共通長
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			current := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestA = i - bestSize
					bestB = j - bestSize
				}
			} else {
				lengths[j] = 0
			}
			prev = current
		}
	}
	return bestA, bestB, bestSize
}
