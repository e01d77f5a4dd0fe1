/**
 * @description
 * Category handlers. The one wrinkle over plain CRUD is the uniqueness rule:
 * a user cannot own two categories with the same (name, type) pair, surfaced
 * as a 409.
 */

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fintrackr/finance-api/internal/domain"
)

// CreateCategoryHandler handles POST /api/categories.
func (h *Handlers) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	var input domain.CategoryInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := validateCategoryInput(input, true); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	category := &domain.Category{
		ID:     uuid.New(),
		UserID: identity.SubjectID,
		Name:   strings.TrimSpace(*input.Name),
		Type:   strings.ToLower(strings.TrimSpace(*input.Type)),
	}
	if input.Icon != nil {
		category.Icon = *input.Icon
	}
	if input.Color != nil {
		category.Color = *input.Color
	}
	if input.IsDefault != nil {
		category.IsDefault = *input.IsDefault
	}

	if err := h.categories.Create(r.Context(), category); err != nil {
		writeStoreError(w, "categories", err)
		return
	}
	writeData(w, http.StatusCreated, map[string]interface{}{"category": category})
}

// ListCategoriesHandler handles GET /api/categories.
func (h *Handlers) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	categories, err := h.categories.List(r.Context(), identity.SubjectID)
	if err != nil {
		writeStoreError(w, "categories", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// ListCategoriesByTypeHandler handles GET /api/categories/type/{type}.
func (h *Handlers) ListCategoriesByTypeHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	categoryType := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "type")))
	if !domain.ValidTransactionType(categoryType) {
		writeValidationError(w, map[string]string{"type": "type must be income, expense or transfer"})
		return
	}

	categories, err := h.categories.ListByType(r.Context(), identity.SubjectID, categoryType)
	if err != nil {
		writeStoreError(w, "categories", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// UpdateCategoryHandler handles PUT /api/categories/{id}.
func (h *Handlers) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	var input domain.CategoryInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := validateCategoryInput(input, false); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	category, err := h.categories.Update(r.Context(), identity.SubjectID, id, input)
	if err != nil {
		writeStoreError(w, "categories", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"category": category})
}

// DeleteCategoryHandler handles DELETE /api/categories/{id}.
func (h *Handlers) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	if err := h.categories.Delete(r.Context(), identity.SubjectID, id); err != nil {
		writeStoreError(w, "categories", err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}

func validateCategoryInput(input domain.CategoryInput, create bool) map[string]string {
	details := map[string]string{}

	if create {
		if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
			details["name"] = "name is required"
		}
		if input.Type == nil {
			details["type"] = "type is required"
		}
	} else if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		details["name"] = "name cannot be empty"
	}
	if input.Type != nil && !domain.ValidTransactionType(strings.ToLower(strings.TrimSpace(*input.Type))) {
		details["type"] = "type must be income, expense or transfer"
	}

	return details
}
