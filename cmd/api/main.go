package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/config"
	dbpkg "github.com/LoganBuchanan/NBAD-Library-Project/internal/db"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/middleware"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/routes"
)

func main() {

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestID())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, rdb, cfg)

	// The frontend is plain static HTML/JS talking to /api with fetch.
	r.Static("/app", "./public")

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
