package services

import (
	"strings"

	"smartstore-ai-api/pkg/models"
)

// AssistantService ダッシュボードのチャットアシスタント。
// 意図分類の結果に応じて、UIヘルプや挨拶はここで完結させ、
// データ参照が必要な意図はラベルを返してダッシュボード側に委ねる。
type AssistantService struct {
	intentService *IntentService
	knowledgeBase []knowledgeEntry
	directives    map[string]string
}

// knowledgeEntry UIヘルプのナレッジベースの1項目。
// スライスで順序を固定し、クエリに含まれる最初のキーが勝つ。
type knowledgeEntry struct {
	Key    string
	Answer string
}

// NewAssistantService 新しいアシスタントサービスを作成
func NewAssistantService(intentService *IntentService) *AssistantService {
	return &AssistantService{
		intentService: intentService,
		knowledgeBase: []knowledgeEntry{
			{Key: "dark mode", Answer: "Toggle Dark/Light Mode using the Moon/Sun icon in the top right."},
			{Key: "export", Answer: "Click the green Export button (Top Right) to download Excel reports."},
			{Key: "import", Answer: "Use the orange Import button in the header to upload bulk products via Excel."},
			{Key: "theme", Answer: "Toggle Dark/Light Mode using the Moon/Sun icon in the top right."},
			{Key: "date", Answer: "Use the Date Pickers in the header to filter the dashboard data."},
			{Key: "wifi", Answer: "The store WiFi password is: StoreSecure123"},
		},
		directives: map[string]string{
			"GET_REVENUE":             "Check the Revenue card on the dashboard for today's totals.",
			"GET_PROFIT":              "The Profit panel shows today's revenue, cost and net profit.",
			"GET_DAILY_GOAL":          "The Daily Goal gauge tracks progress against today's target.",
			"CHECK_STOCK":             "Open the Inventory tab to review low-stock alerts.",
			"GET_PRODUCT_COUNT":       "The Inventory tab header shows the number of listed products.",
			"GET_TOTAL_ORDERS":        "The Orders panel lists today's and lifetime transaction counts.",
			"GET_RECENT_TRANSACTIONS": "The Live Transactions feed shows the latest sales.",
			"GET_FEEDBACK":            "New customer messages are waiting in the Admin Inbox.",
			"BEST_SELLER":             "The Best Sellers chart ranks products by units sold.",
			"GET_CATEGORIES":          "Category totals are on the Dashboard Analytics panel.",
			"PREDICT_SALES":           "Open the Forecast panel for the 7-day sales prediction.",
			"GET_STAFF":               "The Staff Overview panel ranks cashiers by sales.",
			"GET_VIP":                 "VIP customers are ranked by points on the Customers tab.",
		},
	}
}

// Answer 質問を分類し、回答と意図ラベルを返す
func (s *AssistantService) Answer(question string) models.ChatAnswer {
	if strings.TrimSpace(question) == "" {
		return models.ChatAnswer{
			Answer: "Hello! I am listening.",
			Intent: "GREETING",
		}
	}

	classification := s.intentService.Classify(question)

	switch classification.Intent {
	case "GREETING":
		return models.ChatAnswer{
			Answer: "Hello! I am your SmartStore AI.",
			Intent: classification.Intent,
		}
	case "GET_UI_HELP", models.IntentUnknown:
		return models.ChatAnswer{
			Answer: s.lookupKnowledgeBase(question),
			Intent: classification.Intent,
		}
	}

	if directive, ok := s.directives[classification.Intent]; ok {
		return models.ChatAnswer{Answer: directive, Intent: classification.Intent}
	}
	return models.ChatAnswer{
		Answer: s.lookupKnowledgeBase(question),
		Intent: classification.Intent,
	}
}

// lookupKnowledgeBase 正規化済みクエリにキーが含まれる最初のヘルプ項目を返す
func (s *AssistantService) lookupKnowledgeBase(question string) string {
	normalized := NormalizeText(question)
	for _, entry := range s.knowledgeBase {
		if strings.Contains(normalized, entry.Key) {
			return entry.Answer
		}
	}
	return "I'm not sure about that. Try asking 'Total Revenue', 'Low Stock', or 'Predict Sales'."
}
