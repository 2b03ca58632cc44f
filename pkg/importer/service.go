package importer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shelfdesk/shelfdesk/pkg/catalog"
	"github.com/shelfdesk/shelfdesk/pkg/errcodes"
	"github.com/shelfdesk/shelfdesk/pkg/librarylog"
	"github.com/shelfdesk/shelfdesk/pkg/models"
	"github.com/uptrace/bun"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Result summarizes one import run. Errors holds per-row messages for rows
// that were skipped; the rest of the file is still applied.
type Result struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// errNothingApplied rolls back an import transaction that created and updated
// nothing, so a file of bad rows leaves no log entry behind.
var errNothingApplied = errors.New("import: no rows applied")

// Import reconciles a CSV stream against the catalog. Existing books are
// matched by exact (book name, author); matches get their present fields
// updated, the rest are created. The whole run is one transaction: either
// every good row lands or none do.
func (svc *Service) Import(ctx context.Context, r io.Reader) (*Result, error) {
	// Spreadsheet exports often lead with a UTF-8 BOM; strip it before the
	// CSV reader sees the header row.
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errcodes.ValidationError("CSV file is empty.")
		}
		return nil, errcodes.ValidationError("CSV header can't be parsed.")
	}

	index := headerIndex(header)
	if missing := missingRequired(index); len(missing) > 0 {
		msg := "CSV is missing required columns:"
		for _, col := range missing {
			msg += " " + strconv.Quote(col)
		}
		return nil, errcodes.ValidationError(msg + ".")
	}

	result := &Result{Errors: []string{}}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		resolver := catalog.NewResolver(tx)

		for line := 2; ; line++ {
			row, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", line, "malformed CSV row"))
				continue
			}

			if err := svc.applyRow(ctx, tx, resolver, index, row, result); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", line, err.Error()))
			}
		}

		if result.Created == 0 && result.Updated == 0 {
			return errNothingApplied
		}

		if result.Created > 0 {
			content := fmt.Sprintf("Imported %d new books from CSV", result.Created)
			if err := librarylog.Append(ctx, tx, models.LogTypeImport, content); err != nil {
				return err
			}
		}
		if result.Updated > 0 {
			content := fmt.Sprintf("Updated %d books from CSV", result.Updated)
			if err := librarylog.Append(ctx, tx, models.LogTypeUpdate, content); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errNothingApplied) {
		return nil, err
	}

	return result, nil
}

// rowError marks a problem with one row's data, as opposed to a database
// failure that should abort the whole import.
type rowError struct{ msg string }

func (e rowError) Error() string { return e.msg }

func (svc *Service) applyRow(ctx context.Context, tx bun.Tx, resolver *catalog.Resolver, index map[string]int, row []string, result *Result) error {
	bookName, hasName := cellValue(field(row, index, "Book Name"))
	author, hasAuthor := cellValue(field(row, index, "Author"))
	category, hasCategory := cellValue(field(row, index, "Category"))

	// A row with any required cell blank is padding, not data; it counts
	// toward nothing, not even the error list.
	if !hasName || !hasAuthor || !hasCategory {
		return nil
	}

	editor, hasEditor := cellValue(field(row, index, "Editor"))
	publisher, hasPublisher := cellValue(field(row, index, "Publisher"))
	status, hasStatus := cellValue(field(row, index, "Status"))
	completionStatus, hasCompletion := cellValue(field(row, index, "Completion Status"))
	note, hasNote := cellValue(field(row, index, "Note"))

	if hasStatus && status != models.BookStatusAvailable && status != models.BookStatusIssued {
		return rowError{fmt.Sprintf("invalid status %q", status)}
	}

	volumes, hasVolumes, err := cellInt(field(row, index, "Volumes"))
	if err != nil {
		return rowError{"volumes must be a number"}
	}
	year, hasYear, err := cellInt(field(row, index, "Year"))
	if err != nil {
		return rowError{"year must be a number"}
	}
	copies, hasCopies, err := cellInt(field(row, index, "Copies"))
	if err != nil {
		return rowError{"copies must be a number"}
	}

	categoryRow, err := resolver.Category(ctx, category)
	if err != nil {
		return err
	}

	var publisherID *int
	if hasPublisher {
		publisherRow, err := resolver.Publisher(ctx, publisher)
		if err != nil {
			return err
		}
		publisherID = &publisherRow.ID
	}

	existing := &models.Book{}
	err = tx.NewSelect().
		Model(existing).
		Where("b.book_name = ? AND b.author = ?", bookName, author).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return errors.WithStack(err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		book := &models.Book{
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
			BookName:    bookName,
			Author:      author,
			CategoryID:  categoryRow.ID,
			PublisherID: publisherID,
			Volumes:     1,
			Copies:      1,
			Status:      models.BookStatusAvailable,
		}
		if hasEditor {
			book.Editor = &editor
		}
		if hasVolumes {
			book.Volumes = volumes
		}
		if hasYear {
			book.Year = &year
		}
		if hasCopies {
			book.Copies = copies
		}
		if hasStatus {
			book.Status = status
		}
		if hasCompletion {
			book.CompletionStatus = &completionStatus
		}
		if hasNote {
			book.Note = &note
		}

		if _, err := tx.NewInsert().Model(book).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		result.Created++
		return nil
	}

	// Category always follows the file. Publisher is only reassigned when
	// the cell resolved to one, so a blank cell doesn't clear an existing
	// publisher. The other fields only change when the cell is present.
	existing.CategoryID = categoryRow.ID
	cols := []string{"category_id", "updated_at"}

	if hasPublisher {
		existing.PublisherID = publisherID
		cols = append(cols, "publisher_id")
	}
	if hasEditor {
		existing.Editor = &editor
		cols = append(cols, "editor")
	}
	if hasVolumes {
		existing.Volumes = volumes
		cols = append(cols, "volumes")
	}
	if hasYear {
		existing.Year = &year
		cols = append(cols, "year")
	}
	if hasCopies {
		existing.Copies = copies
		cols = append(cols, "copies")
	}
	if hasStatus {
		existing.Status = status
		cols = append(cols, "status")
	}
	if hasCompletion {
		existing.CompletionStatus = &completionStatus
		cols = append(cols, "completion_status")
	}
	if hasNote {
		existing.Note = &note
		cols = append(cols, "note")
	}

	existing.UpdatedAt = time.Now()
	if _, err := tx.NewUpdate().Model(existing).Column(cols...).WherePK().Exec(ctx); err != nil {
		return errors.WithStack(err)
	}
	result.Updated++
	return nil
}

// Export writes the whole catalog as CSV in the import column order.
func (svc *Service) Export(ctx context.Context, w io.Writer) error {
	books := []*models.Book{}
	err := svc.db.
		NewSelect().
		Model(&books).
		Relation("Category").
		Relation("Publisher").
		Order("b.id ASC").
		Scan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return errors.WithStack(err)
	}

	for _, book := range books {
		row := []string{
			book.BookName,
			book.Author,
			book.CategoryName(),
			strDeref(book.Editor),
			strconv.Itoa(book.Volumes),
			book.PublisherName(),
			intDeref(book.Year),
			strconv.Itoa(book.Copies),
			book.Status,
			strDeref(book.CompletionStatus),
			strDeref(book.Note),
		}
		if err := writer.Write(row); err != nil {
			return errors.WithStack(err)
		}
	}

	writer.Flush()
	return errors.WithStack(writer.Error())
}

// WriteTemplate writes the CSV header plus one example row.
func WriteTemplate(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return errors.WithStack(err)
	}
	example := []string{
		"The Left Hand of Darkness", "Ursula K. Le Guin", "Science Fiction",
		"", "1", "Ace Books", "1969", "2", "Available", "Complete", "",
	}
	if err := writer.Write(example); err != nil {
		return errors.WithStack(err)
	}
	writer.Flush()
	return errors.WithStack(writer.Error())
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intDeref(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
