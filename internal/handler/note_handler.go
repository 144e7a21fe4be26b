package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campus-vault/campusvault-api/internal/dto"
	"github.com/campus-vault/campusvault-api/internal/models"
	"github.com/campus-vault/campusvault-api/internal/service"
	appErrors "github.com/campus-vault/campusvault-api/pkg/errors"
	"github.com/campus-vault/campusvault-api/pkg/response"
)

// NoteHandler exposes the notes catalog endpoints.
type NoteHandler struct {
	catalog *service.CatalogService
}

// NewNoteHandler constructs NoteHandler.
func NewNoteHandler(catalog *service.CatalogService) *NoteHandler {
	return &NoteHandler{catalog: catalog}
}

// List godoc
// @Summary List notes
// @Tags Notes
// @Produce json
// @Param branch query string false "Filter by branch"
// @Param semester query string false "Filter by semester"
// @Param subject query string false "Filter by subject"
// @Param noteType query string false "Filter by note type (handwritten, typed, slides, uploaded)"
// @Param search query string false "Search in title and subject"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	var filter dto.NoteFilter
	filter.Branch = c.Query("branch")
	filter.Semester = c.Query("semester")
	filter.Subject = c.Query("subject")
	filter.NoteType = models.NoteType(c.Query("noteType"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = pageParams(c)

	notes, total, err := h.catalog.ListNotes(c.Request.Context(), filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes, paginationMeta(filter.Page, filter.PageSize, total))
}

// Get godoc
// @Summary Get note detail
// @Tags Notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} response.Envelope
// @Router /notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	note, err := h.catalog.GetNote(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, note, nil)
}

// Create godoc
// @Summary Upload a note
// @Tags Notes
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param subject formData string true "Subject"
// @Param note_type formData string false "Note type (handwritten, typed, slides, uploaded)"
// @Param branch formData string true "Branch"
// @Param semester formData string true "Semester"
// @Param description formData string false "Description"
// @Param file formData file true "Note file (pdf, jpeg, png)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	var meta dto.CreateNoteRequest
	if err := c.ShouldBind(&meta); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid note payload"))
		return
	}
	upload, closeUpload, err := uploadFromForm(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeUpload()

	note, err := h.catalog.CreateNote(c.Request.Context(), meta, upload, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// Delete godoc
// @Summary Delete a note
// @Tags Notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeleteNote(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
