package helper_util

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetIDParam reads a positive integer path parameter.
func GetIDParam(c *gin.Context, name string) (int64, error) {
	return parseID(c.Param(name))
}

// GetOptionalIDQuery reads a positive integer query parameter; ok is false when absent.
func GetOptionalIDQuery(c *gin.Context, name string) (id int64, ok bool, err error) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return 0, false, nil
	}
	id, err = parseID(raw)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be positive", raw)
	}
	return id, nil
}
