package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teamsp-admin-api/internal/middleware"
	"github.com/noah-isme/teamsp-admin-api/internal/models"
	appErrors "github.com/noah-isme/teamsp-admin-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

// param reads key from the query string, falling back to the form body.
func param(c *gin.Context, key string) string {
	if value, ok := c.GetQuery(key); ok {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(c.PostForm(key))
}

func pathID(c *gin.Context, resource string) (int64, error) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrInvalidParameter, resource+" id is required")
	}
	return id, nil
}

func offsetParam(c *gin.Context) (int, error) {
	raw := param(c, "offset")
	if raw == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return 0, appErrors.Clone(appErrors.ErrInvalidParameter, "offset must be a non-negative integer")
	}
	return offset, nil
}

// idsParam parses a comma-separated id list. Empty entries are skipped.
func idsParam(c *gin.Context) ([]int64, error) {
	raw := param(c, "ids")
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidParameter, "ids must be comma-separated integers")
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidParameter, "ids must be comma-separated integers")
	}
	return ids, nil
}

// bind decodes a JSON or form payload depending on the content type.
func bind(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBind(dst); err != nil {
		var numErr *strconv.NumError
		msg := "invalid payload"
		if errors.As(err, &numErr) {
			msg = "invalid payload: numeric field expected"
		}
		return appErrors.Wrap(err, appErrors.ErrInvalidParameter.Code, appErrors.ErrInvalidParameter.Status, msg)
	}
	return nil
}
