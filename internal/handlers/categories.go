package handlers

import (
	"net/http"

	"postcms/internal/envelope"
	"postcms/internal/service"
)

const msgCategoryNotFound = "Category not found."

// Categories groups the category HTTP handlers.
type Categories struct {
	svc *service.CategoryService
}

// NewCategories creates a new Categories handler group.
func NewCategories(svc *service.CategoryService) *Categories {
	return &Categories{svc: svc}
}

// List returns every category, unpaginated.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	envelope.Success(w, http.StatusOK, "Categories retrieved successfully.", items)
}

func (h *Categories) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, msgCategoryNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	envelope.Success(w, http.StatusOK, "Category retrieved successfully.", c)
}

func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeMalformed(w)
		return
	}
	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	envelope.Success(w, http.StatusCreated, "Category created successfully.", c)
}

func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, msgCategoryNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in service.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeMalformed(w)
		return
	}
	c, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	envelope.Success(w, http.StatusOK, "Category updated successfully.", c)
}

func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, msgCategoryNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	envelope.Success(w, http.StatusOK, "Category deleted successfully.", nil)
}
