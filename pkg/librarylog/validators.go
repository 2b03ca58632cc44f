package librarylog

type ListLogsQuery struct {
	Page    int     `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
	PerPage int     `query:"per_page" json:"per_page,omitempty" default:"100" validate:"min=1,max=500"`
	LogType *string `query:"log_type" json:"log_type,omitempty" validate:"omitempty,max=50"`
}
