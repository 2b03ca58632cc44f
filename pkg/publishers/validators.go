package publishers

type CreatePublisherPayload struct {
	Name        string  `json:"name" mod:"trim" validate:"required,max=100"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=300"`
	ContactInfo *string `json:"contact_info,omitempty" validate:"omitempty,max=200"`
}

type UpdatePublisherPayload struct {
	Name        *string `json:"name,omitempty" mod:"trim" validate:"omitempty,min=1,max=100"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=300"`
	ContactInfo *string `json:"contact_info,omitempty" validate:"omitempty,max=200"`
}
