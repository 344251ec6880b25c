package handlers

import (
	"errors"
	"net/http"

	"marketshare/internal/api/models"
	"marketshare/internal/share"

	"github.com/gin-gonic/gin"
)

// Transform handles GET /api/v1/transform?share=&cap_limit=
func Transform(c *gin.Context) {
	var q models.TransformQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	if *q.Share < 0 {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", errors.New("share must be >= 0"))
		return
	}
	if *q.CapLimit <= 0 || *q.CapLimit > 1 {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", errors.New("cap_limit must be in (0, 1]"))
		return
	}

	c.JSON(http.StatusOK, models.TransformResponse{
		Share:    *q.Share,
		CapLimit: *q.CapLimit,
		Limited:  share.CapLimitTransform(*q.Share, *q.CapLimit),
	})
}
