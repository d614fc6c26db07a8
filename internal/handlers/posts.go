package handlers

import (
	"net/http"

	"postcms/internal/envelope"
	"postcms/internal/service"
)

const msgPostNotFound = "Post not found."

// Posts groups the post HTTP handlers.
type Posts struct {
	svc *service.PostService
}

// NewPosts creates a new Posts handler group.
func NewPosts(svc *service.PostService) *Posts {
	return &Posts{svc: svc}
}

// List returns a page of posts (?page=, ?per_page=).
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(),
		queryInt(r, "page", 1), queryInt(r, "per_page", service.DefaultPerPage))
	if err != nil {
		writeError(w, r, err)
		return
	}
	envelope.Success(w, http.StatusOK, "Posts retrieved successfully.", page)
}

func (h *Posts) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, msgPostNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	envelope.Success(w, http.StatusOK, "Post retrieved successfully.", p)
}

func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeMalformed(w)
		return
	}
	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	envelope.Success(w, http.StatusCreated, "Post created successfully.", p)
}

// Update serves both PUT and PATCH; only the fields present in the body
// are changed.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, msgPostNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in service.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeMalformed(w)
		return
	}
	p, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	envelope.Success(w, http.StatusOK, "Post updated successfully.", p)
}

func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, msgPostNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	envelope.Success(w, http.StatusOK, "Post deleted successfully.", nil)
}
