package members

type ListMembersQuery struct {
	Page    int     `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
	PerPage int     `query:"per_page" json:"per_page,omitempty" default:"100" validate:"min=1,max=500"`
	Name    *string `query:"name" json:"name,omitempty" validate:"omitempty,max=100"`
}

type CreateMemberPayload struct {
	Name    string  `json:"name" mod:"trim" validate:"required,max=100"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
}

type UpdateMemberPayload struct {
	Name    *string `json:"name,omitempty" mod:"trim" validate:"omitempty,min=1,max=100"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
}
