//go:build !lambda

// Command shield-lambda serves the optimizer as an AWS Lambda function URL.
// Built without the lambda tag it answers a single request read from stdin,
// which is handy for trying the handler locally:
//
//	echo '{"generator_id":"regular","total_cpu":100000,"available_cpu":50000}' | shield-lambda
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/events"

	"github.com/rsned/shieldcalc-server/internal/config"
	"github.com/rsned/shieldcalc-server/internal/logger"
)

func main() {
	path := flag.String("path", "/", "Request path: / to optimize, /compare to rank generators")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	h, err := newHandler(cfg, log)
	if err != nil {
		log.Error("failed to build handler", "error", err)
		os.Exit(1)
	}

	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Error("failed to read request", "error", err)
		os.Exit(1)
	}

	var event events.LambdaFunctionURLRequest
	event.RawPath = *path
	event.RequestContext.HTTP.Method = "POST"
	event.Body = string(body)

	resp, err := h.handle(context.Background(), event)
	if err != nil {
		log.Error("request failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(resp.Body)
	if resp.StatusCode != 200 {
		os.Exit(1)
	}
}
