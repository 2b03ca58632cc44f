package books

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelfdesk/shelfdesk/pkg/errcodes"
)

type handler struct {
	bookService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	offset := (params.Page - 1) * params.PerPage
	books, total, err := h.bookService.ListBooksWithTotal(ctx, ListBooksOptions{
		Limit:     &params.PerPage,
		Offset:    &offset,
		BookName:  params.BookName,
		Author:    params.Author,
		Category:  params.Category,
		Publisher: params.Publisher,
		Status:    params.Status,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"books":        RenderList(books),
		"total":        total,
		"pages":        (total + params.PerPage - 1) / params.PerPage,
		"current_page": params.Page,
		"per_page":     params.PerPage,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, Render(book)))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.CreateBook(ctx, CreateBookOptions{
		BookName:         params.BookName,
		Author:           params.Author,
		Category:         params.Category,
		Editor:           params.Editor,
		Volumes:          params.Volumes,
		Publisher:        params.Publisher,
		Year:             params.Year,
		Copies:           params.Copies,
		Status:           params.Status,
		CompletionStatus: params.CompletionStatus,
		Note:             params.Note,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, Render(book)))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.UpdateBook(ctx, id, UpdateBookOptions{
		BookName:  params.BookName,
		Author:    params.Author,
		Volumes:   params.Volumes,
		Category:  params.Category,
		Publisher: params.Publisher,
		Year:      params.Year,
		Note:      params.Note,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, Render(book)))
}

func (h *handler) deleteBook(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	if err := h.bookService.DeleteBook(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{"message": "Book deleted successfully"}))
}

func (h *handler) bulkDelete(c echo.Context) error {
	ctx := c.Request().Context()

	params := BulkDeletePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	deleted, err := h.bookService.BulkDeleteBooks(ctx, params.BookIDs)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"message":       "Successfully deleted " + strconv.Itoa(deleted) + " books",
		"deleted_count": deleted,
	}))
}
