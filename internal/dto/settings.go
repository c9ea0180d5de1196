package dto

// UpdateSettingsRequest carries the business settings to change.
type UpdateSettingsRequest struct {
	AmountPrecision   *int32  `json:"amountPrecision,omitempty" binding:"omitempty,min=2,max=6"`
	VoidDating        *string `json:"voidDating,omitempty" binding:"omitempty,oneof=void_date original_date"`
	StrictGroupNature *bool   `json:"strictGroupNature,omitempty"`
}
