package endpoints

import (
	"net/http"

	"etlapi"
	"etlapi/internal/api/handler/middleware"
	"etlapi/internal/api/handler/request"
	"etlapi/internal/api/handler/response"
	"etlapi/internal/api/service"
	"etlapi/pkg"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ftpHandler struct {
	ftpService *service.FTPService
	logger     zerolog.Logger
	config     etlapi.AppConfig
}

func newFTPHandler() *ftpHandler {
	return &ftpHandler{
		ftpService: service.NewFTPService(),
		logger:     etlapi.Logger,
		config:     etlapi.GetConfig(),
	}
}

// FTPHandler sets up FTP browsing routes
func FTPHandler(router *graceful.Graceful) {
	h := newFTPHandler()

	routes := router.Group("/api/v1/ftp")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.POST("/list", h.list)
	}
}

// list connects to an FTP server and lists a directory
func (slf *ftpHandler) list(c *gin.Context) {
	var dto request.FTPListDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse ftp list request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	entries, err := slf.ftpService.ListDirectory(dto)
	if err != nil {
		slf.logger.Error().Err(err).Str("host", dto.Host).Msg("Failed to list ftp directory")
		c.JSON(http.StatusBadGateway, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
