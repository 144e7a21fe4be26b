package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-vault/campusvault-api/internal/dto"
	"github.com/campus-vault/campusvault-api/internal/service"
	appErrors "github.com/campus-vault/campusvault-api/pkg/errors"
	"github.com/campus-vault/campusvault-api/pkg/response"
)

// TimetableHandler exposes the timetable endpoints.
type TimetableHandler struct {
	catalog *service.CatalogService
}

// NewTimetableHandler constructs TimetableHandler.
func NewTimetableHandler(catalog *service.CatalogService) *TimetableHandler {
	return &TimetableHandler{catalog: catalog}
}

// List godoc
// @Summary List timetables
// @Tags Timetables
// @Produce json
// @Param branch query string false "Filter by branch"
// @Param semester query string false "Filter by semester"
// @Param section query string false "Filter by section"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var filter dto.TimetableFilter
	filter.Branch = c.Query("branch")
	filter.Semester = c.Query("semester")
	filter.Section = c.Query("section")
	filter.Page, filter.PageSize = pageParams(c)

	timetables, total, err := h.catalog.ListTimetables(c.Request.Context(), filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetables, paginationMeta(filter.Page, filter.PageSize, total))
}

// Get godoc
// @Summary Get timetable detail
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	timetable, err := h.catalog.GetTimetable(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Create godoc
// @Summary Publish a timetable
// @Tags Timetables
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param branch formData string true "Branch"
// @Param semester formData string true "Semester"
// @Param section formData string false "Section"
// @Param academic_year formData string false "Academic year (defaults to the current year)"
// @Param file formData file true "Timetable file (pdf, jpeg, png)"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /timetables [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var meta dto.CreateTimetableRequest
	if err := c.ShouldBind(&meta); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	upload, closeUpload, err := uploadFromForm(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeUpload()

	timetable, err := h.catalog.CreateTimetable(c.Request.Context(), meta, upload, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, timetable)
}

// Delete godoc
// @Summary Delete a timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeleteTimetable(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
