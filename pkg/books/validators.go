package books

type ListBooksQuery struct {
	Page      int     `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
	PerPage   int     `query:"per_page" json:"per_page,omitempty" default:"100" validate:"min=1,max=500"`
	BookName  *string `query:"bookName" json:"bookName,omitempty" validate:"omitempty,max=200"`
	Author    *string `query:"author" json:"author,omitempty" validate:"omitempty,max=100"`
	Category  *string `query:"category" json:"category,omitempty" validate:"omitempty,max=50"`
	Publisher *string `query:"publisher" json:"publisher,omitempty" validate:"omitempty,max=100"`
	Status    *string `query:"status" json:"status,omitempty" validate:"omitempty,oneof=Available Issued"`
}

type CreateBookPayload struct {
	BookName         string  `json:"bookName" mod:"trim" validate:"required,max=200"`
	Author           string  `json:"author" mod:"trim" validate:"required,max=100"`
	Category         string  `json:"category" mod:"trim" validate:"required,max=50"`
	Editor           *string `json:"editor,omitempty" validate:"omitempty,max=100"`
	Volumes          *int    `json:"volumes,omitempty" validate:"omitempty,min=1"`
	Publisher        *string `json:"publisher,omitempty" validate:"omitempty,max=100"`
	Year             *int    `json:"year,omitempty" validate:"omitempty,min=0"`
	Copies           *int    `json:"copies,omitempty" validate:"omitempty,min=1"`
	Status           *string `json:"status,omitempty" validate:"omitempty,oneof=Available Issued"`
	CompletionStatus *string `json:"completion_status,omitempty" validate:"omitempty,max=50"`
	Note             *string `json:"note,omitempty"`
}

type UpdateBookPayload struct {
	BookName  *string `json:"bookName,omitempty" mod:"trim" validate:"omitempty,min=1,max=200"`
	Author    *string `json:"author,omitempty" mod:"trim" validate:"omitempty,min=1,max=100"`
	Volumes   *int    `json:"volumes,omitempty" validate:"omitempty,min=1"`
	Category  *string `json:"category,omitempty" mod:"trim" validate:"omitempty,min=1,max=50"`
	Publisher *string `json:"publisher,omitempty" validate:"omitempty,max=100"`
	Year      *int    `json:"year,omitempty" validate:"omitempty,min=0"`
	Note      *string `json:"note,omitempty"`
}

type BulkDeletePayload struct {
	BookIDs []int `json:"book_ids" validate:"required,min=1,dive,min=1"`
}
