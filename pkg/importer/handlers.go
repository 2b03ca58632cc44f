package importer

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelfdesk/shelfdesk/pkg/errcodes"
)

const maxUploadSize = 10 << 20 // 10 MiB

type handler struct {
	importService *Service
}

func (h *handler) importCSV(c echo.Context) error {
	ctx := c.Request().Context()

	params := ImportCSVPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	fh := params.FormFiles["file"]
	if fh == nil {
		return errcodes.ValidationError("file is required.")
	}
	if fh.Size > maxUploadSize {
		return errcodes.ValidationError("file is too large.")
	}

	f, err := fh.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil {
		return errors.WithStack(err)
	}
	if len(data) > maxUploadSize {
		return errcodes.ValidationError("file is too large.")
	}

	// Content sniffing rather than trusting the filename or Content-Type.
	// CSVs detect as text/csv or plain text depending on the content.
	mt := mimetype.Detect(data)
	if !mt.Is("text/csv") && !mt.Is("text/plain") && !mt.Is("text/tab-separated-values") {
		return errcodes.ValidationError(fmt.Sprintf("expected a CSV file, got %s.", mt.String()))
	}

	result, err := h.importService.Import(ctx, bytes.NewReader(data))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, result))
}

func (h *handler) exportCSV(c echo.Context) error {
	ctx := c.Request().Context()

	filename := fmt.Sprintf("books_export_%s.csv", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)

	return errors.WithStack(h.importService.Export(ctx, c.Response()))
}

func (h *handler) template(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="books_template.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	return errors.WithStack(WriteTemplate(c.Response()))
}

func (h *handler) templateInfo(c echo.Context) error {
	type columnInfo struct {
		Name     string `json:"name"`
		Required bool   `json:"required"`
		Default  string `json:"default,omitempty"`
	}

	info := make([]columnInfo, 0, len(columns))
	for _, col := range columns {
		ci := columnInfo{Name: col}
		for _, required := range requiredColumns {
			if col == required {
				ci.Required = true
			}
		}
		switch col {
		case "Volumes", "Copies":
			ci.Default = "1"
		case "Status":
			ci.Default = "Available"
		}
		info = append(info, ci)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"columns":      info,
		"placeholders": []string{"-", "**", "N/A"},
	}))
}
