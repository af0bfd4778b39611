package services

// IntentDefinition 1つの意図ラベルとその代表フレーズ群。
// フレーズは小文字・記号なしで記述する（NormalizeText適用済みの形）。
type IntentDefinition struct {
	Label   string
	Phrases []string
}

// DefaultIntentCatalog ダッシュボードが扱う意図のカタログ。
// スライスで順序を固定し、同点時は先に定義された意図が勝つ。
// プロセス起動時に一度構築し、以後は読み取り専用。
func DefaultIntentCatalog() []IntentDefinition {
	return []IntentDefinition{
		{Label: "GET_REVENUE", Phrases: []string{
			"revenue", "total revenue", "sales today", "how much did we sell", "earnings", "income",
		}},
		{Label: "GET_PROFIT", Phrases: []string{
			"profit", "net profit", "profit today", "how much profit", "margin",
		}},
		{Label: "GET_DAILY_GOAL", Phrases: []string{
			"daily goal", "target", "goal status", "did we reach the goal",
		}},
		{Label: "CHECK_STOCK", Phrases: []string{
			"stock", "low stock", "inventory", "stock status", "out of stock",
		}},
		{Label: "GET_PRODUCT_COUNT", Phrases: []string{
			"product count", "how many products", "inventory size", "number of products",
		}},
		{Label: "GET_TOTAL_ORDERS", Phrases: []string{
			"orders", "total orders", "orders today", "how many orders", "lifetime orders",
		}},
		{Label: "GET_RECENT_TRANSACTIONS", Phrases: []string{
			"recent transactions", "last transactions", "latest sales", "live transactions",
		}},
		{Label: "GET_FEEDBACK", Phrases: []string{
			"feedback", "messages", "admin inbox", "customer feedback",
		}},
		{Label: "BEST_SELLER", Phrases: []string{
			"best seller", "best sellers", "top products", "top selling", "what sells most",
		}},
		{Label: "GET_CATEGORIES", Phrases: []string{
			"categories", "top categories", "category summary",
		}},
		{Label: "PREDICT_SALES", Phrases: []string{
			"predict sales", "forecast", "sales forecast", "future sales", "prediction",
		}},
		{Label: "GET_STAFF", Phrases: []string{
			"staff", "top staff", "best cashier", "staff overview", "top performer",
		}},
		{Label: "GET_VIP", Phrases: []string{
			"vip", "vip customers", "top customer", "loyal customers",
		}},
		{Label: "GET_UI_HELP", Phrases: []string{
			"export", "import", "theme", "dark mode", "date filter", "where is", "how do i", "help",
		}},
		{Label: "GREETING", Phrases: []string{
			"hello", "hi", "hey", "good morning", "good evening",
		}},
	}
}
