package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// groupIDParam читает :id из пути; при ошибке отвечает 400
func groupIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return 0, false
	}
	return uint(id), true
}
