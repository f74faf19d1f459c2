package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type healthReport struct {
	OK    bool   `json:"ok"`
	DB    string `json:"db"`
	Redis string `json:"redis"`
}

// Health pings postgres and redis with a short deadline. Load balancers key
// off the status code; the body says which dependency is down.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		report := healthReport{OK: true, DB: "connected", Redis: "connected"}
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			report.DB = "error"
			report.OK = false
		}
		if rdb.Ping(ctx).Err() != nil {
			report.Redis = "error"
			report.OK = false
		}

		code := http.StatusOK
		if !report.OK {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, report)
	}
}
