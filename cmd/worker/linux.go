//go:build linux

package main

import (
	"github.com/srand/beam/worker/pkg/log"
	"github.com/srand/beam/worker/pkg/utils"
)

func init() {
	log.Info("Detected Linux")

	// Disable transparent huge pages to workaround memory leaks
	utils.DisableTHP()
}
