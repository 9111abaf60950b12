package admin

import (
	"net/http"

	"huntapi/services"

	"github.com/gin-gonic/gin"
)

// Handler exposes hunt-setup operations to organizers.
type Handler struct {
	importer *services.ImportService
}

func NewHandler(importer *services.ImportService) *Handler {
	return &Handler{importer: importer}
}

// ImportHunt loads a hunt definition from an uploaded workbook
// @Summary Import a hunt from XLSX
// @Description Replace the puzzle and response tables from a workbook with
// Puzzles and Responses sheets. Refused once guesses have been logged.
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Hunt workbook"
// @Success 200 {object} services.ImportSummary
// @Failure 400 {object} map[string]string
// @Router /admin/hunt/import [post]
// @Security Bearer
func (h *Handler) ImportHunt(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to get file: " + err.Error()})
		return
	}

	openedFile, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open file: " + err.Error()})
		return
	}
	defer openedFile.Close()

	summary, err := h.importer.ImportWorkbook(openedFile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}
