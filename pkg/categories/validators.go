package categories

type CreateCategoryPayload struct {
	Name        string  `json:"name" mod:"trim" validate:"required,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=300"`
}

type UpdateCategoryPayload struct {
	Name        *string `json:"name,omitempty" mod:"trim" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=300"`
}
