package endpoints

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"etlapi"
	"etlapi/internal/api/handler/middleware"
	"etlapi/internal/api/handler/response"
	"etlapi/internal/api/service"
	"etlapi/internal/etl"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mappingHandler struct {
	mappingService *service.MappingService
	logger         zerolog.Logger
	config         etlapi.AppConfig
}

func newMappingHandler() *mappingHandler {
	return &mappingHandler{
		mappingService: service.NewMappingService(),
		logger:         etlapi.Logger,
		config:         etlapi.GetConfig(),
	}
}

// MappingHandler sets up mapping table routes
func MappingHandler(router *graceful.Graceful) {
	h := newMappingHandler()

	routes := router.Group("/api/v1/mappings")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.POST("/upload", h.uploadMappingSheet)
		routes.POST("/data", h.uploadMappedData)
		routes.GET("/tables", h.listMappingTables)
	}
}

// uploadMappingSheet accepts a multipart spreadsheet and builds a mapping
// table named after the file.
func (slf *mappingHandler) uploadMappingSheet(c *gin.Context) {
	warehouseID, ok := slf.warehouseIDFromForm(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "A spreadsheet file is required"})
		return
	}
	if !isSpreadsheet(file.Filename) {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Only .xlsx and .xls files are supported"})
		return
	}

	tableName := c.PostForm("tableName")
	if tableName == "" {
		base := strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
		tableName = etl.SanitizeColumnName(base)
	}
	if !etl.IsValidIdentifier(tableName) {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid table name: " + tableName})
		return
	}

	path, err := slf.saveUpload(c, file)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to save uploaded spreadsheet")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to store uploaded file"})
		return
	}
	defer os.Remove(path)

	result, err := slf.mappingService.UploadMappingSheet(c.Request.Context(), warehouseID, path, tableName)
	if err != nil {
		slf.respondMappingError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// uploadMappedData loads a data sheet through an existing mapping table.
func (slf *mappingHandler) uploadMappedData(c *gin.Context) {
	warehouseID, ok := slf.warehouseIDFromForm(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "A spreadsheet file is required"})
		return
	}
	if !isSpreadsheet(file.Filename) {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Only .xlsx and .xls files are supported"})
		return
	}

	mappingTable := c.PostForm("mappingTable")
	targetTable := c.PostForm("targetTable")
	if mappingTable == "" || targetTable == "" {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "mappingTable and targetTable are required"})
		return
	}

	path, err := slf.saveUpload(c, file)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to save uploaded spreadsheet")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to store uploaded file"})
		return
	}
	defer os.Remove(path)

	result, err := slf.mappingService.UploadMappedData(c.Request.Context(), warehouseID, path, mappingTable, targetTable)
	if err != nil {
		slf.respondMappingError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// listMappingTables lists the warehouse tables holding column mappings.
func (slf *mappingHandler) listMappingTables(c *gin.Context) {
	warehouseID, err := strconv.ParseUint(c.Query("warehouseId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Query parameter 'warehouseId' is required"})
		return
	}

	tables, err := slf.mappingService.ListMappingTables(c.Request.Context(), uint(warehouseID))
	if err != nil {
		slf.logger.Error().Err(err).Uint64("warehouseId", warehouseID).Msg("Failed to list mapping tables")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to list mapping tables"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

func (slf *mappingHandler) warehouseIDFromForm(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.PostForm("warehouseId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Form field 'warehouseId' is required"})
		return 0, false
	}
	return uint(id), true
}

// saveUpload stages the multipart file under the upload dir with a unique
// name so concurrent uploads of the same file never collide.
func (slf *mappingHandler) saveUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(slf.config.UploadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(slf.config.UploadDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", err
	}
	return path, nil
}

func (slf *mappingHandler) respondMappingError(c *gin.Context, err error) {
	var verr *etl.ValidationError
	var cerr *etl.ConfigError
	var nerr *etl.NotFoundError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, response.APIError{Message: verr.Msg})
	case errors.As(err, &cerr):
		c.JSON(http.StatusBadRequest, response.APIError{Message: cerr.Msg})
	case errors.As(err, &nerr):
		c.JSON(http.StatusNotFound, response.APIError{Message: nerr.Error()})
	default:
		slf.logger.Error().Err(err).Msg("Mapping operation failed")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: err.Error()})
	}
}

func isSpreadsheet(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".xlsx" || ext == ".xls"
}
