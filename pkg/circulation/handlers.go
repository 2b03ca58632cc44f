package circulation

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

type handler struct {
	circulationService *Service
}

func (h *handler) issue(c echo.Context) error {
	ctx := c.Request().Context()

	params := IssueBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	issueDate, err := time.Parse(dateLayout, params.IssueDate)
	if err != nil {
		return errors.WithStack(err)
	}
	returnDate, err := time.Parse(dateLayout, params.ReturnDate)
	if err != nil {
		return errors.WithStack(err)
	}

	record, err := h.circulationService.IssueBook(ctx, IssueBookOptions{
		BookID:     params.BookID,
		MemberName: params.MemberName,
		IssueDate:  issueDate,
		ReturnDate: returnDate,
		Notes:      params.Notes,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, Render(record)))
}

func (h *handler) returnBook(c echo.Context) error {
	ctx := c.Request().Context()

	params := ReturnBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	actualReturnDate, err := time.Parse(dateLayout, params.ActualReturnDate)
	if err != nil {
		return errors.WithStack(err)
	}

	record, err := h.circulationService.ReturnBook(ctx, ReturnBookOptions{
		BookID:           params.BookID,
		ActualReturnDate: actualReturnDate,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, Render(record)))
}

func (h *handler) listHistory(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListHistoryQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	offset := (params.Page - 1) * params.PerPage
	records, total, err := h.circulationService.ListHistoryWithTotal(ctx, ListHistoryOptions{
		Limit:    &params.PerPage,
		Offset:   &offset,
		BookID:   params.BookID,
		MemberID: params.MemberID,
		Status:   params.Status,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"issues":       RenderList(records),
		"total":        total,
		"pages":        (total + params.PerPage - 1) / params.PerPage,
		"current_page": params.Page,
		"per_page":     params.PerPage,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}
