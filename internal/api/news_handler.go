package api

import (
	"net/http"

	"github.com/access-ci-org/Operations-Router-News/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewsHandler news 查询接口（展示页 WebURL 背后的读路径）
type NewsHandler struct {
	repo   repository.NewsRepository
	prefix string
	logger *logrus.Logger
}

func NewNewsHandler(repo repository.NewsRepository, prefix string, logger *logrus.Logger) *NewsHandler {
	return &NewsHandler{
		repo:   repo,
		prefix: prefix,
		logger: logger,
	}
}

// ListNews 列出本命名空间下的全部 news
// @Router /api/news [get]
func (h *NewsHandler) ListNews(c *gin.Context) {
	items, err := h.repo.ListNewsByPrefix(c.Request.Context(), h.prefix)
	if err != nil {
		h.logger.Errorf("查询 news 列表失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

// GetNewsDetail 按 URN 查询单条 news 及其关联资源
// @Router /api/news/{urn} [get]
func (h *NewsHandler) GetNewsDetail(c *gin.Context) {
	urn := c.Param("urn")
	item, err := h.repo.GetNews(c.Request.Context(), urn)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "news 不存在"})
		return
	}
	assocs, err := h.repo.ListAssociationsByURN(c.Request.Context(), urn)
	if err != nil {
		h.logger.Errorf("查询 news 关联失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resources := make([]string, 0, len(assocs))
	for _, a := range assocs {
		resources = append(resources, a.AssociatedID)
	}
	c.JSON(http.StatusOK, gin.H{
		"item":               item,
		"affected_resources": resources,
	})
}
