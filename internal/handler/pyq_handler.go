package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campus-vault/campusvault-api/internal/dto"
	"github.com/campus-vault/campusvault-api/internal/models"
	"github.com/campus-vault/campusvault-api/internal/service"
	appErrors "github.com/campus-vault/campusvault-api/pkg/errors"
	"github.com/campus-vault/campusvault-api/pkg/response"
)

// PYQHandler exposes the previous-year question paper endpoints.
type PYQHandler struct {
	catalog *service.CatalogService
}

// NewPYQHandler constructs PYQHandler.
func NewPYQHandler(catalog *service.CatalogService) *PYQHandler {
	return &PYQHandler{catalog: catalog}
}

// List godoc
// @Summary List question papers
// @Tags PYQs
// @Produce json
// @Param branch query string false "Filter by branch"
// @Param subject query string false "Filter by subject"
// @Param year query int false "Filter by year"
// @Param examType query string false "Filter by exam type (mid, final, quiz, regular)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /pyqs [get]
func (h *PYQHandler) List(c *gin.Context) {
	var filter dto.PYQFilter
	filter.Branch = c.Query("branch")
	filter.Subject = c.Query("subject")
	filter.ExamType = models.ExamType(c.Query("examType"))
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	filter.Page, filter.PageSize = pageParams(c)

	papers, total, err := h.catalog.ListPYQs(c.Request.Context(), filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, papers, paginationMeta(filter.Page, filter.PageSize, total))
}

// Get godoc
// @Summary Get question paper detail
// @Tags PYQs
// @Produce json
// @Param id path string true "Question paper ID"
// @Success 200 {object} response.Envelope
// @Router /pyqs/{id} [get]
func (h *PYQHandler) Get(c *gin.Context) {
	paper, err := h.catalog.GetPYQ(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, paper, nil)
}

// Create godoc
// @Summary Upload a question paper
// @Tags PYQs
// @Accept multipart/form-data
// @Produce json
// @Param subject formData string true "Subject"
// @Param branch formData string true "Branch"
// @Param year formData int true "Exam year"
// @Param exam_type formData string true "Exam type (mid, final, quiz, regular)"
// @Param file formData file true "Question paper (pdf only)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /pyqs [post]
func (h *PYQHandler) Create(c *gin.Context) {
	var meta dto.CreatePYQRequest
	if err := c.ShouldBind(&meta); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid question paper payload"))
		return
	}
	upload, closeUpload, err := uploadFromForm(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeUpload()

	paper, err := h.catalog.CreatePYQ(c.Request.Context(), meta, upload, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, paper)
}

// Delete godoc
// @Summary Delete a question paper
// @Tags PYQs
// @Produce json
// @Param id path string true "Question paper ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /pyqs/{id} [delete]
func (h *PYQHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeletePYQ(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
