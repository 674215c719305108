package admin

import (
	"strconv"

	handlershared "github.com/tezgo/ops-backend/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func queryPagination(c *gin.Context) (int, int) {
	return handlershared.QueryPagination(c)
}

// queryUint 读取查询参数中的数字，非法或缺失时返回 0
func queryUint(c *gin.Context, name string) uint {
	value, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}
