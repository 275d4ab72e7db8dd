//go:build lambda

package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/rsned/shieldcalc-server/internal/config"
	"github.com/rsned/shieldcalc-server/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, "json", os.Stderr)

	h, err := newHandler(cfg, log)
	if err != nil {
		log.Error("failed to build handler", "error", err)
		os.Exit(1)
	}
	lambda.Start(h.handle)
}
