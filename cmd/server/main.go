// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/core/model"
	"github.com/jaycherian/gcp-go-shorts-pipeline/internal/telemetry"
)

func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()
	r.Use(otelgin.Middleware("shorts-pipeline-server"))
	r.Use(cors.Default())

	r.GET("/health", HealthHandler)

	apiV1 := r.Group("/api/v1")
	{
		ShortsRouter(apiV1)
		WorkspaceRouter(apiV1)
	}

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}

// HealthHandler reports the liveness of the server, the reachability of
// the generation backend and speech service, and whether ffmpeg is on the
// path.
func HealthHandler(c *gin.Context) {
	backendStatus := "online"
	if err := state.cloud.ComfyClient.CheckHealth(c); err != nil {
		backendStatus = "offline"
	}
	speechStatus := "online"
	if err := state.cloud.SpeechClient.CheckHealth(c); err != nil {
		speechStatus = "offline"
	}
	ffmpegStatus := "available"
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		ffmpegStatus = "missing"
	}

	status := "healthy"
	if backendStatus == "offline" || speechStatus == "offline" || ffmpegStatus == "missing" {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"generation": backendStatus,
		"speech":     speechStatus,
		"ffmpeg":     ffmpegStatus,
	})
}

// ShortsRouter sets up the production routes: full pipeline runs, clip
// generation, assembly, and streaming of published shorts.
func ShortsRouter(r *gin.RouterGroup) {
	shorts := r.Group("/shorts")
	{
		shorts.POST("", func(c *gin.Context) {
			request := &model.ShortRequest{AddSubtitles: true}
			if err := c.ShouldBindJSON(request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := state.shortsService.Produce(c, request)
			if err != nil {
				respondPipelineError(c, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		shorts.GET("/:id/stream", func(c *gin.Context) {
			id := c.Param("id")
			uri := fmt.Sprintf("gs://%s/%s", state.config.Storage.PublishBucket, id)
			ttl := time.Duration(state.config.Storage.SignedURLTTLInMinutes) * time.Minute
			if ttl <= 0 {
				ttl = 15 * time.Minute
			}
			signedURL, err := state.shortsService.GenerateSignedURL(c, uri, ttl)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate streaming URL"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"url": signedURL})
		})
	}

	r.POST("/clips", func(c *gin.Context) {
		request := &model.VideoRequest{}
		if err := c.ShouldBindJSON(request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sequence, err := state.shortsService.GenerateClips(c, request)
		if err != nil {
			respondPipelineError(c, err)
			return
		}
		c.JSON(http.StatusOK, sequence)
	})

	r.POST("/assemblies", func(c *gin.Context) {
		request := &model.AssemblyRequest{AddSubtitles: true}
		if err := c.ShouldBindJSON(request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result, err := state.shortsService.Assemble(c, request)
		if err != nil {
			respondPipelineError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})
}

// WorkspaceRouter sets up workspace maintenance routes.
func WorkspaceRouter(r *gin.RouterGroup) {
	r.DELETE("/workspace", func(c *gin.Context) {
		removed, err := state.shortsService.Sweep()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "removed": removed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	})
}

// respondPipelineError maps the sentinel error taxonomy onto HTTP status
// codes: bad input is the caller's fault, an unreachable backend is
// service-unavailable, everything else is internal.
func respondPipelineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrBackendUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
