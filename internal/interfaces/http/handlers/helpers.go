package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/pkg/utils"
)

func parseIDParam(c *gin.Context, name, message string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domainerrors.FieldError(name, message)
	}
	return id, nil
}

func bindError(err error) error {
	return domainerrors.Validation("invalid request body: "+err.Error(), nil)
}

func paginationFromQuery(c *gin.Context) utils.PaginationParams {
	var params utils.PaginationParams
	// malformed values fall back to the defaults
	_ = c.ShouldBindQuery(&params)
	return utils.GetPaginationParams(params.Page, params.Limit)
}
