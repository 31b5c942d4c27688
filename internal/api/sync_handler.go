package api

import (
	"net/http"

	"github.com/access-ci-org/Operations-Router-News/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SyncHandler struct {
	syncService *service.SyncService
	logger      *logrus.Logger
}

func NewSyncHandler(syncService *service.SyncService, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		logger:      logger,
	}
}

// TriggerSync 手动触发一轮同步（与调度器到点执行互斥，串行化）
// @Summary 立即执行一轮 拉取→合并→入库
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /sync [post]
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	if err := h.syncService.RunOnce(c.Request.Context()); err != nil {
		h.logger.Errorf("手动同步失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "同步完成",
	})
}
