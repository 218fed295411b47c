package endpoints

import (
	"errors"
	"net/http"

	"etlapi"
	"etlapi/internal/api/handler/mapper"
	"etlapi/internal/api/handler/middleware"
	"etlapi/internal/api/handler/request"
	"etlapi/internal/api/handler/response"
	"etlapi/internal/api/service"
	"etlapi/internal/etl"
	"etlapi/pkg"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type processHandler struct {
	processService   *service.ProcessService
	schedulerService *service.SchedulerService
	schedulerMapper  mapper.SchedulerMapper
	logger           zerolog.Logger
	config           etlapi.AppConfig
}

func newProcessHandler() *processHandler {
	return &processHandler{
		processService:   service.NewProcessService(),
		schedulerService: service.NewSchedulerService(),
		schedulerMapper:  mapper.NewSchedulerMapper(),
		logger:           etlapi.Logger,
		config:           etlapi.GetConfig(),
	}
}

// ProcessHandler sets up target table processing and scheduling routes
func ProcessHandler(router *graceful.Graceful) {
	h := newProcessHandler()

	routes := router.Group("/api/v1")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.POST("/process", h.process)
		routes.POST("/schedule", h.schedule)
		routes.GET("/schedule/runs", h.runs)
	}
}

// process runs the target table processor once
func (slf *processHandler) process(c *gin.Context) {
	var dto request.ProcessDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse process request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	result, err := slf.processService.Process(c.Request.Context(), dto)
	if err != nil {
		slf.respondProcessError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// schedule records a run and executes it immediately
func (slf *processHandler) schedule(c *gin.Context) {
	var dto request.ScheduleDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse schedule request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	run, err := slf.schedulerService.Schedule(c.Request.Context(), dto)
	if err != nil {
		if run != nil {
			// The run was recorded and is terminal; report it with the error.
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": err.Error(),
				"run":   slf.schedulerMapper.ToRunResponse(*run),
			})
			return
		}
		slf.respondProcessError(c, err)
		return
	}

	c.JSON(http.StatusOK, slf.schedulerMapper.ToRunResponse(*run))
}

// runs returns the scheduler run history
func (slf *processHandler) runs(c *gin.Context) {
	runs, err := slf.schedulerService.Runs()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to list scheduler runs")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to list scheduler runs"})
		return
	}

	c.JSON(http.StatusOK, slf.schedulerMapper.ToRunResponses(runs))
}

func (slf *processHandler) respondProcessError(c *gin.Context, err error) {
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
		slf.logger.Error().Err(err).Msg("Processing failed")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: err.Error()})
	}
}
