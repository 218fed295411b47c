package endpoints

import (
	"net/http"
	"strconv"

	"etlapi"
	"etlapi/internal/api/handler/mapper"
	"etlapi/internal/api/handler/middleware"
	"etlapi/internal/api/handler/request"
	"etlapi/internal/api/handler/response"
	"etlapi/internal/api/models"
	"etlapi/internal/api/service"
	"etlapi/pkg"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type warehouseHandler struct {
	warehouseService *service.WarehouseService
	logger           zerolog.Logger
	config           etlapi.AppConfig
	warehouseMapper  mapper.WarehouseMapper
}

func newWarehouseHandler() *warehouseHandler {
	return &warehouseHandler{
		warehouseService: service.NewWarehouseService(),
		logger:           etlapi.Logger,
		config:           etlapi.GetConfig(),
		warehouseMapper:  mapper.NewWarehouseMapper(),
	}
}

// WarehouseHandler sets up warehouse metadata routes
func WarehouseHandler(router *graceful.Graceful) {
	h := newWarehouseHandler()

	routes := router.Group("/api/v1/warehouses")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("", h.getAll)
		routes.GET("/:id", h.getByID)
		routes.POST("", h.create)
		routes.PUT("/:id", h.update)
		routes.DELETE("/:id", h.delete)
		routes.POST("/test-connection", h.testConnection)
	}
}

// getAll returns all warehouse metadata entries
func (slf *warehouseHandler) getAll(c *gin.Context) {
	warehouses, err := slf.warehouseService.FindAll()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to get all warehouses")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to retrieve warehouses"})
		return
	}

	c.JSON(http.StatusOK, slf.warehouseMapper.ToWarehouseResponses(warehouses))
}

// getByID returns a single warehouse metadata entry by ID
func (slf *warehouseHandler) getByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid ID"})
		return
	}

	warehouse, err := slf.warehouseService.FindByID(uint(id))
	if err != nil {
		slf.logger.Error().Err(err).Uint64("id", id).Msg("Failed to get warehouse")
		c.JSON(http.StatusNotFound, response.APIError{Message: "Warehouse not found"})
		return
	}

	c.JSON(http.StatusOK, slf.warehouseMapper.ToWarehouseResponse(*warehouse))
}

// create creates a new warehouse metadata entry
func (slf *warehouseHandler) create(c *gin.Context) {
	var req request.CreateWarehouse
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse create warehouse request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	created, err := slf.warehouseService.Create(slf.warehouseMapper.CreateToEntity(req))
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to create warehouse")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to create warehouse"})
		return
	}

	c.JSON(http.StatusCreated, slf.warehouseMapper.ToWarehouseResponse(*created))
}

// update updates an existing warehouse metadata entry
func (slf *warehouseHandler) update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid ID"})
		return
	}

	var req request.UpdateWarehouse
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse update warehouse request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	updated, err := slf.warehouseService.Update(uint(id), func(m *models.WarehouseMetadata) {
		slf.warehouseMapper.PatchEntity(req, m)
	})
	if err != nil {
		slf.logger.Error().Err(err).Uint64("id", id).Msg("Failed to update warehouse")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to update warehouse"})
		return
	}

	c.JSON(http.StatusOK, slf.warehouseMapper.ToWarehouseResponse(*updated))
}

// delete removes a warehouse metadata entry
func (slf *warehouseHandler) delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid ID"})
		return
	}

	if err := slf.warehouseService.Delete(uint(id)); err != nil {
		slf.logger.Error().Err(err).Uint64("id", id).Msg("Failed to delete warehouse")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to delete warehouse"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

// testConnection tests a warehouse connection from form values
func (slf *warehouseHandler) testConnection(c *gin.Context) {
	var req request.CreateWarehouse
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse test connection request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	cfg := models.DBConnectionConfig{
		Type:     models.DBType(req.DbType),
		Host:     req.Host,
		Port:     req.Port,
		Database: req.DatabaseName,
		Username: req.User,
		Password: req.Password,
		SSLMode:  req.SSLMode,
	}

	result := service.TestDatabaseConnection(cfg)
	c.JSON(http.StatusOK, result)
}
