package circulation

type IssueBookPayload struct {
	BookID     int     `json:"book_id" validate:"required,min=1"`
	MemberName string  `json:"memberName" mod:"trim" validate:"required,max=100"`
	IssueDate  string  `json:"issueDate" validate:"required,date"`
	ReturnDate string  `json:"returnDate" validate:"required,date"`
	Notes      *string `json:"notes,omitempty"`
}

type ReturnBookPayload struct {
	BookID           int    `json:"book_id" validate:"required,min=1"`
	ActualReturnDate string `json:"actualReturnDate" validate:"required,date"`
}

type ListHistoryQuery struct {
	Page     int     `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
	PerPage  int     `query:"per_page" json:"per_page,omitempty" default:"100" validate:"min=1,max=500"`
	BookID   *int    `query:"book_id" json:"book_id,omitempty" validate:"omitempty,min=1"`
	MemberID *int    `query:"member_id" json:"member_id,omitempty" validate:"omitempty,min=1"`
	Status   *string `query:"status" json:"status,omitempty" validate:"omitempty,oneof=Pending Returned"`
}
