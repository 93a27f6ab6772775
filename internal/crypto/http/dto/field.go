// Package dto provides data transfer objects for the field encryption endpoints.
package dto

import (
	validation "github.com/jellydator/validation"
)

// maxFieldLength bounds request values; encrypted fields are short identifiers.
const maxFieldLength = 4096

// FieldRequest carries one value to encrypt or decrypt.
type FieldRequest struct {
	Value string `json:"value"`
}

// Validate checks if the field request is valid.
func (r *FieldRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value,
			validation.Required,
			validation.Length(1, maxFieldLength),
		),
	)
}

// FieldResponse carries the result of an encrypt or decrypt call.
type FieldResponse struct {
	Value  string `json:"value"`
	Masked string `json:"masked,omitempty"`
}
