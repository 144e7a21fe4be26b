package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-vault/campusvault-api/internal/dto"
	"github.com/campus-vault/campusvault-api/internal/service"
	appErrors "github.com/campus-vault/campusvault-api/pkg/errors"
	"github.com/campus-vault/campusvault-api/pkg/response"
)

// ThoughtHandler exposes the ephemeral thoughts board.
type ThoughtHandler struct {
	thoughts *service.ThoughtService
}

// NewThoughtHandler constructs ThoughtHandler.
func NewThoughtHandler(thoughts *service.ThoughtService) *ThoughtHandler {
	return &ThoughtHandler{thoughts: thoughts}
}

// List godoc
// @Summary List unexpired thoughts
// @Tags Thoughts
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /thoughts [get]
func (h *ThoughtHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	thoughts, total, err := h.thoughts.List(c.Request.Context(), page, size, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, thoughts, paginationMeta(page, size, total))
}

// Create godoc
// @Summary Post a thought
// @Tags Thoughts
// @Accept json
// @Produce json
// @Param payload body dto.CreateThoughtRequest true "Thought payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /thoughts [post]
func (h *ThoughtHandler) Create(c *gin.Context) {
	var req dto.CreateThoughtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid thought payload"))
		return
	}
	thought, err := h.thoughts.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, thought)
}

// Delete godoc
// @Summary Delete a thought
// @Tags Thoughts
// @Produce json
// @Param id path string true "Thought ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /thoughts/{id} [delete]
func (h *ThoughtHandler) Delete(c *gin.Context) {
	if err := h.thoughts.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
