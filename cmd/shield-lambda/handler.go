package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/rsned/shieldcalc-server/internal/config"
	"github.com/rsned/shieldcalc-server/internal/shield/catalog"
	"github.com/rsned/shieldcalc-server/internal/shield/engine"
	"github.com/rsned/shieldcalc-server/pkg/shield"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

// handler serves the optimizer behind a Lambda function URL.
//
//	GET  /          catalog listing
//	POST /          optimize the Request in the body
//	POST /compare   rank every generator for the Request in the body
type handler struct {
	engine *engine.Engine
	logger *slog.Logger
}

// newHandler builds the engine from the embedded catalog, or from
// cfg.CatalogPath when set. No database is used, so settings are unavailable.
func newHandler(cfg *config.Config, logger *slog.Logger) (*handler, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	if cfg.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.CatalogPath)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(cat, nil, engine.Options{CacheSize: cfg.CacheSize, Logger: logger})
	if err != nil {
		return nil, err
	}
	return &handler{engine: eng, logger: logger}, nil
}

func (h *handler) handle(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	method := event.RequestContext.HTTP.Method
	path := strings.TrimSuffix(event.RawPath, "/")

	if path != "" && path != "/compare" {
		return errResp(http.StatusNotFound, "unknown path "+event.RawPath)
	}
	if method == http.MethodGet && path == "" {
		return jsonResp(http.StatusOK, h.engine.ListCatalog())
	}
	if method != http.MethodPost {
		return errResp(http.StatusMethodNotAllowed, "use GET for the catalog or POST a request")
	}

	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(http.StatusBadRequest, "invalid base64 body")
		}
		body = string(decoded)
	}

	var req shield.Request
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errResp(http.StatusBadRequest, "invalid JSON: "+err.Error())
	}

	var (
		result any
		err    error
	)
	if path == "/compare" {
		result, err = h.engine.CompareGenerators(ctx, req)
	} else {
		result, err = h.engine.Optimize(ctx, req)
	}
	if err != nil {
		if engine.IsClientError(err) {
			return errResp(http.StatusBadRequest, err.Error())
		}
		h.logger.Error("request failed", "path", path, "error", err)
		return errResp(http.StatusInternalServerError, "internal error")
	}
	return jsonResp(http.StatusOK, result)
}

func jsonResp(code int, v any) (events.LambdaFunctionURLResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return errResp(http.StatusInternalServerError, "encoding response")
	}
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}
