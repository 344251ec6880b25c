package handlers

import (
	"fmt"

	"marketshare/internal/api/models"
	"marketshare/internal/diag"

	"github.com/gin-gonic/gin"
)

func abortWithError(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

// diagnostics renders recorded events for JSON. Field values are stringified
// since they may hold NaN or Inf.
func diagnostics(events []diag.Event) []models.Diagnostic {
	if len(events) == 0 {
		return nil
	}
	out := make([]models.Diagnostic, 0, len(events))
	for _, ev := range events {
		d := models.Diagnostic{Level: ev.Level, Message: ev.Message}
		if len(ev.Fields) > 0 {
			d.Fields = make(map[string]string, len(ev.Fields))
			for k, v := range ev.Fields {
				d.Fields[k] = fmt.Sprint(v)
			}
		}
		out = append(out, d)
	}
	return out
}
