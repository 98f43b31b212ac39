package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/srand/beam/worker/pkg/plasma"
	"github.com/srand/beam/worker/pkg/store"
	"github.com/srand/beam/worker/pkg/transport"
)

func newHttpHandler(memoryStore *store.MemoryStore, submitter *transport.DirectTaskSubmitter, spill *plasma.FileStore, r *echo.Echo) {
	r.GET("/statistics", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"store":     memoryStore.Statistics(),
			"submitter": submitter.Statistics(),
			"spilled":   spill.Spilled(),
		})
	})
}
