package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"etlapi"
	"etlapi/internal/api/handler/endpoints"
	"etlapi/internal/api/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
)

func main() {
	etlapi.InitConfig(".env")
	gin.SetMode(gin.ReleaseMode)

	if etlapi.GetConfig().Mode == "dev" {
		if err := etlapi.DB.AutoMigrate(
			&models.User{},
			&models.WarehouseMetadata{},
			&models.SchedulerRun{},
		); err != nil {
			etlapi.Logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
		etlapi.Logger.Info().Msg("Database migrated successfully")
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(etlapi.GetConfig().ApiPort))
	if err != nil {
		panic(err)
	}
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	initAPI(router)

	etlapi.Logger.Debug().Msgf("Starting ETL API on port %s", etlapi.GetConfig().ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		etlapi.Logger.Fatal().Msg(err.Error())
		panic(err)
	}
}

func initAPI(router *graceful.Graceful) {
	endpoints.AuthHandler(router)
	endpoints.WarehouseHandler(router)
	endpoints.MappingHandler(router)
	endpoints.ProcessHandler(router)
	endpoints.FTPHandler(router)
}
