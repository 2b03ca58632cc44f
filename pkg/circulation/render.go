package circulation

import "github.com/shelfdesk/shelfdesk/pkg/models"

// Response is the wire shape of an issue record with the book and member
// names flattened in.
type Response struct {
	*models.IssueRecord
	BookName   string `json:"bookName"`
	MemberName string `json:"memberName"`
}

func Render(record *models.IssueRecord) Response {
	resp := Response{IssueRecord: record}
	if record.Book != nil {
		resp.BookName = record.Book.BookName
	}
	if record.Member != nil {
		resp.MemberName = record.Member.Name
	}
	return resp
}

func RenderList(list []*models.IssueRecord) []Response {
	out := make([]Response, len(list))
	for i, record := range list {
		out[i] = Render(record)
	}
	return out
}
