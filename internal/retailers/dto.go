package retailers

import "strings"

// CreateRetailerRequest is the retailer form.
type CreateRetailerRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=200"`
	Phone   string `json:"phone" validate:"required,notblank,max=32"`
	Address string `json:"address" validate:"required,notblank,max=500"`
}

// UpdateRetailerRequest replaces every editable field.
type UpdateRetailerRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=200"`
	Phone   string `json:"phone" validate:"required,notblank,max=32"`
	Address string `json:"address" validate:"required,notblank,max=500"`
}

func (r *CreateRetailerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
}

func (r *UpdateRetailerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
}
