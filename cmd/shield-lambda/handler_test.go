package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/rsned/shieldcalc-server/internal/config"
	"github.com/rsned/shieldcalc-server/pkg/shield"
)

func newTestHandler(t *testing.T) *handler {
	t.Helper()
	h, err := newHandler(&config.Config{CacheSize: 8}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newHandler: %v", err)
	}
	return h
}

func event(method, path, body string) events.LambdaFunctionURLRequest {
	var e events.LambdaFunctionURLRequest
	e.RequestContext.HTTP.Method = method
	e.RawPath = path
	e.Body = body
	return e
}

func TestHandle_Optimize(t *testing.T) {
	h := newTestHandler(t)

	resp, err := h.handle(context.Background(), event("POST", "/",
		`{"generator_id":"regular","total_cpu":999999,"available_cpu":999999}`))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if resp.StatusCode != 200 || resp.Headers["Content-Type"] != "application/json" {
		t.Fatalf("response = %d %v: %s", resp.StatusCode, resp.Headers, resp.Body)
	}

	var res shield.Result
	if err := json.Unmarshal([]byte(resp.Body), &res); err != nil {
		t.Fatal(err)
	}
	if res.TotalCapacity != 300000 || !res.RechargeTime.Infinite {
		t.Errorf("result = %+v", res)
	}
}

func TestHandle_Base64AndCompare(t *testing.T) {
	h := newTestHandler(t)

	e := event("POST", "/compare", base64.StdEncoding.EncodeToString(
		[]byte(`{"total_cpu":100000,"available_cpu":50000}`)))
	e.IsBase64Encoded = true

	resp, _ := h.handle(context.Background(), e)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d: %s", resp.StatusCode, resp.Body)
	}
	var cmp shield.CompareResponse
	if err := json.Unmarshal([]byte(resp.Body), &cmp); err != nil {
		t.Fatal(err)
	}
	if len(cmp.Comparisons) != 4 || cmp.Comparisons[0].Result.GeneratorID != "alien" {
		t.Errorf("comparisons = %+v", cmp.Comparisons)
	}
}

func TestHandle_Catalog(t *testing.T) {
	resp, _ := newTestHandler(t).handle(context.Background(), event("GET", "/", ""))
	if resp.StatusCode != 200 || !strings.Contains(resp.Body, `"large_fusion"`) {
		t.Errorf("catalog response = %d: %s", resp.StatusCode, resp.Body)
	}
}

func TestHandle_Errors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		ev   events.LambdaFunctionURLRequest
		want int
	}{
		{"bad json", event("POST", "/", `{"generator_id":`), 400},
		{"validation", event("POST", "/", `{"generator_id":"regular","total_cpu":-1}`), 400},
		{"unknown generator", event("POST", "/", `{"generator_id":"ghost"}`), 400},
		{"unknown path", event("POST", "/warp", `{}`), 404},
		{"unknown path with bad body", event("POST", "/warp", `{"generator_id":`), 404},
		{"wrong method", event("DELETE", "/", ""), 405},
		{"get unknown path", event("GET", "/warp", ""), 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.handle(context.Background(), tt.ev)
			if err != nil {
				t.Fatalf("handle returned error: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d: %s", resp.StatusCode, tt.want, resp.Body)
			}
			var body map[string]string
			if err := json.Unmarshal([]byte(resp.Body), &body); err != nil || body["error"] == "" {
				t.Errorf("error body = %s", resp.Body)
			}
		})
	}

	bad := event("POST", "/", "!!!")
	bad.IsBase64Encoded = true
	if resp, _ := h.handle(context.Background(), bad); resp.StatusCode != 400 {
		t.Errorf("bad base64 status = %d", resp.StatusCode)
	}
}
