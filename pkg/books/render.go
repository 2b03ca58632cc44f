package books

import "github.com/shelfdesk/shelfdesk/pkg/models"

// Response is the wire shape of a book: the category and publisher relations
// are flattened to their names.
type Response struct {
	*models.Book
	Category  string  `json:"category"`
	Publisher *string `json:"publisher"`
}

// Render flattens a book (with loaded relations) into its response shape.
func Render(book *models.Book) Response {
	resp := Response{Book: book, Category: book.CategoryName()}
	if name := book.PublisherName(); name != "" {
		resp.Publisher = &name
	}
	return resp
}

// RenderList renders a slice of books.
func RenderList(list []*models.Book) []Response {
	out := make([]Response, len(list))
	for i, book := range list {
		out[i] = Render(book)
	}
	return out
}
