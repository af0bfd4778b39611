package handlers

import (
	"net/http"

	"smartstore-ai-api/pkg/models"
	"smartstore-ai-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ChatbotHandler 意図分類とチャットアシスタントのハンドラー
type ChatbotHandler struct {
	intentService    *services.IntentService
	assistantService *services.AssistantService
}

// NewChatbotHandler 新しいチャットボットハンドラーを作成
func NewChatbotHandler(intentService *services.IntentService, assistantService *services.AssistantService) *ChatbotHandler {
	return &ChatbotHandler{
		intentService:    intentService,
		assistantService: assistantService,
	}
}

// Classify クエリを意図ラベルに分類する
func (ch *ChatbotHandler) Classify(c *gin.Context) {
	var req models.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "リクエストの解析に失敗しました: " + err.Error(),
		})
		return
	}

	result := ch.intentService.Classify(req.Query)
	c.JSON(http.StatusOK, result)
}

// Chat 質問に対するアシスタントの回答を返す
func (ch *ChatbotHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "リクエストの解析に失敗しました: " + err.Error(),
		})
		return
	}

	answer := ch.assistantService.Answer(req.Question)
	c.JSON(http.StatusOK, answer)
}
