package service

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"postcms/internal/apperr"
)

// maxStringLen bounds title, name and author fields.
const maxStringLen = 255

// validator accumulates per-field messages in the order rules are checked.
type validator struct {
	fields apperr.Fields
}

func newValidator() *validator {
	return &validator{fields: apperr.Fields{}}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return apperr.Validation(v.fields)
}

// label turns a field key into the words used in messages: "category_id"
// becomes "category id".
func label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// requiredString checks a string that must be present and non-blank. When
// partial is true an absent field passes. max of zero means unbounded.
// The trimmed value is written back into f.
func (v *validator) requiredString(field string, f *Field[string], max int, partial bool) {
	if !f.Set && partial {
		return
	}
	if f.Invalid {
		v.fields.Add(field, "The "+label(field)+" field must be a string.")
		return
	}
	f.Value = strings.TrimSpace(f.Value)
	if !f.Set || f.Null || f.Value == "" {
		v.fields.Add(field, "The "+label(field)+" field is required.")
		return
	}
	v.maxLen(field, f.Value, max)
}

// nullableString checks an optional string that may be null.
func (v *validator) nullableString(field string, f *Field[string], max int) {
	if !f.Set || f.Null {
		return
	}
	if f.Invalid {
		v.fields.Add(field, "The "+label(field)+" field must be a string.")
		return
	}
	v.maxLen(field, f.Value, max)
}

func (v *validator) maxLen(field, value string, max int) {
	if max > 0 && utf8.RuneCountInString(value) > max {
		v.fields.Add(field, "The "+label(field)+" field must not be greater than "+strconv.Itoa(max)+" characters.")
	}
}

// requiredReference checks a UUID reference. exists is only consulted for
// well-formed values and its error aborts validation.
func (v *validator) requiredReference(field string, f Field[uuid.UUID], partial bool, exists func(uuid.UUID) (bool, error)) error {
	if !f.Set && partial {
		return nil
	}
	if !f.Set || f.Null {
		v.fields.Add(field, "The "+label(field)+" field is required.")
		return nil
	}
	if f.Invalid || f.Value == uuid.Nil {
		v.fields.Add(field, "The selected "+label(field)+" is invalid.")
		return nil
	}
	ok, err := exists(f.Value)
	if err != nil {
		return err
	}
	if !ok {
		v.fields.Add(field, "The selected "+label(field)+" is invalid.")
	}
	return nil
}
