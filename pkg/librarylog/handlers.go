package librarylog

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	logService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListLogsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	offset := (params.Page - 1) * params.PerPage
	logs, total, err := h.logService.ListLogsWithTotal(ctx, ListLogsOptions{
		Limit:   &params.PerPage,
		Offset:  &offset,
		LogType: params.LogType,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"logs":         logs,
		"total":        total,
		"pages":        (total + params.PerPage - 1) / params.PerPage,
		"current_page": params.Page,
		"per_page":     params.PerPage,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}
