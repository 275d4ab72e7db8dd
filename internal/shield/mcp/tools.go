package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rsned/shieldcalc-server/internal/shield/optimizer"
	"github.com/rsned/shieldcalc-server/internal/shield/report"
	"github.com/rsned/shieldcalc-server/pkg/shield"
)

// ToolDefinition describes an MCP tool.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema is a simplified JSON Schema representation.
type JSONSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a schema property.
type Property struct {
	Type                 string              `json:"type,omitempty"`
	Description          string              `json:"description,omitempty"`
	Default              any                 `json:"default,omitempty"`
	Enum                 []string            `json:"enum,omitempty"`
	Minimum              *float64            `json:"minimum,omitempty"`
	Maximum              *float64            `json:"maximum,omitempty"`
	Items                *Property           `json:"items,omitempty"`
	Properties           map[string]Property `json:"properties,omitempty"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *Property           `json:"additionalProperties,omitempty"`
}

// toolFunc runs one tool against its raw arguments.
type toolFunc func(ctx context.Context, args json.RawMessage) (any, error)

// tool pairs a definition with its handler; tools/list and tools/call both
// read from the same table so they cannot drift apart.
type tool struct {
	def  ToolDefinition
	call toolFunc
}

func (s *Server) registerTools() {
	s.tools = []tool{
		{optimizeShieldsTool(), s.toolOptimizeShields},
		{compareGeneratorsTool(), s.toolCompareGenerators},
		{listCatalogTool(), s.toolListCatalog},
		{componentDetailsTool(), s.toolComponentDetails},
		{saveSettingsTool(), s.toolSaveSettings},
		{loadSettingsTool(), s.toolLoadSettings},
		{listSettingsTool(), s.toolListSettings},
		{deleteSettingsTool(), s.toolDeleteSettings},
	}
	s.toolByName = make(map[string]toolFunc, len(s.tools))
	for _, t := range s.tools {
		s.toolByName[t.def.Name] = t.call
	}
}

// ToolDefinitions returns the definitions of every registered tool in
// registration order.
func (s *Server) ToolDefinitions() []ToolDefinition {
	defs := make([]ToolDefinition, len(s.tools))
	for i, t := range s.tools {
		defs[i] = t.def
	}
	return defs
}

// requestProperties describes the optimization request fields.
// withGenerator adds generator_id.
func requestProperties(withGenerator bool) map[string]Property {
	zero := 0.0
	hundred := 100.0

	props := map[string]Property{
		"total_cpu": {
			Type:        "number",
			Description: "Total CPU capacity of the ship",
			Minimum:     &zero,
		},
		"available_cpu": {
			Type:        "number",
			Description: "CPU available for shield boosters",
			Minimum:     &zero,
		},
		"fixed_reactor_counts": {
			Type:                 "object",
			Description:          "Installed shield reactors (component_id -> count), e.g. small_fusion, large_fusion",
			AdditionalProperties: &Property{Type: "integer"},
		},
		"block_counts": {
			Type:                 "object",
			Description:          "Hull blocks (block_type_id -> count): steel, hardenedSteel, combatSteel, xeno",
			AdditionalProperties: &Property{Type: "integer"},
		},
		"min_efficiency_percent": {
			Type:        "number",
			Description: "Minimum CPU efficiency in percent. A positive floor unlocks extra CPU beyond available_cpu.",
			Default:     0,
			Minimum:     &zero,
			Maximum:     &hundred,
		},
		"min_recharge_rate": {
			Type:        "number",
			Description: "Minimum shield recharge per second. 0 means no floor.",
			Default:     0,
			Minimum:     &zero,
		},
	}
	if withGenerator {
		props["generator_id"] = Property{
			Type:        "string",
			Description: "Shield generator id (see list_catalog), e.g. compact, regular, advanced, alien",
		}
	}
	return props
}

func optimizeShieldsTool() ToolDefinition {
	props := requestProperties(true)
	props["include_breakdown"] = Property{
		Type:        "boolean",
		Description: "Include per-booster capacity and recharge contributions",
		Default:     true,
	}

	return ToolDefinition{
		Name:        "optimize_shields",
		Description: "Find the shield capacitor/charger combination with the highest total shield capacity for a generator under CPU, efficiency and recharge constraints.",
		InputSchema: JSONSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"generator_id", "total_cpu", "available_cpu"},
		},
	}
}

func compareGeneratorsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "compare_generators",
		Description: "Run the same constraints against every shield generator and rank them by achievable shield capacity.",
		InputSchema: JSONSchema{
			Type:       "object",
			Properties: requestProperties(false),
			Required:   []string{"total_cpu", "available_cpu"},
		},
	}
}

func listCatalogTool() ToolDefinition {
	return ToolDefinition{
		Name:        "list_catalog",
		Description: "List shield generators, boosters, reactors and hull block types with their stats.",
		InputSchema: JSONSchema{Type: "object"},
	}
}

func componentDetailsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "component_details",
		Description: "Look up a single booster or reactor by id.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"component_id": {Type: "string", Description: "Component ID"},
			},
			Required: []string{"component_id"},
		},
	}
}

func saveSettingsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "save_settings",
		Description: "Save an optimization request under a name so it can be loaded or re-run later.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"name": {Type: "string", Description: "Settings name"},
				"request": {
					Type:        "object",
					Description: "Optimization request, same fields as optimize_shields",
					Properties:  requestProperties(true),
					Required:    []string{"generator_id"},
				},
			},
			Required: []string{"name", "request"},
		},
	}
}

func loadSettingsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "load_settings",
		Description: "Load saved settings by name. Set optimize to also run them.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"name":     {Type: "string", Description: "Settings name"},
				"optimize": {Type: "boolean", Description: "Also optimize the saved request", Default: false},
			},
			Required: []string{"name"},
		},
	}
}

func listSettingsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "list_settings",
		Description: "List all saved settings.",
		InputSchema: JSONSchema{Type: "object"},
	}
}

func deleteSettingsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "delete_settings",
		Description: "Delete saved settings by name.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"name": {Type: "string", Description: "Settings name"},
			},
			Required: []string{"name"},
		},
	}
}

// decodeArgs unmarshals tool arguments; missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}

// OptimizeArgs are the optimize_shields arguments.
type OptimizeArgs struct {
	shield.Request
	IncludeBreakdown *bool `json:"include_breakdown,omitempty"`
}

// OptimizeResponse is the optimize_shields output.
type OptimizeResponse struct {
	Result           *shield.Result        `json:"result"`
	RechargeTimeText string                `json:"recharge_time_text"`
	Breakdown        []report.BreakdownRow `json:"breakdown,omitempty"`
}

func (s *Server) toolOptimizeShields(ctx context.Context, args json.RawMessage) (any, error) {
	var a OptimizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	res, err := s.engine.Optimize(ctx, a.Request)
	if err != nil {
		return nil, err
	}

	resp := OptimizeResponse{
		Result:           res,
		RechargeTimeText: optimizer.FormatRechargeTime(res.RechargeTime),
	}
	if a.IncludeBreakdown == nil || *a.IncludeBreakdown {
		resp.Breakdown = report.Breakdown(s.engine.Catalog(), res)
	}
	return resp, nil
}

func (s *Server) toolCompareGenerators(ctx context.Context, args json.RawMessage) (any, error) {
	var req shield.Request
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.CompareGenerators(ctx, req)
}

// ComponentDetailsArgs are the component_details arguments.
type ComponentDetailsArgs struct {
	ComponentID string `json:"component_id"`
}

func (s *Server) toolListCatalog(_ context.Context, _ json.RawMessage) (any, error) {
	return s.engine.ListCatalog(), nil
}

func (s *Server) toolComponentDetails(ctx context.Context, args json.RawMessage) (any, error) {
	var a ComponentDetailsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.engine.ComponentDetails(a.ComponentID)
}

// SaveSettingsArgs are the save_settings arguments.
type SaveSettingsArgs struct {
	Name    string         `json:"name"`
	Request shield.Request `json:"request"`
}

func (s *Server) toolSaveSettings(ctx context.Context, args json.RawMessage) (any, error) {
	var a SaveSettingsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.engine.SaveSettings(ctx, a.Name, a.Request); err != nil {
		return nil, err
	}
	return s.engine.LoadSettings(ctx, a.Name)
}

// LoadSettingsArgs are the load_settings arguments.
type LoadSettingsArgs struct {
	Name     string `json:"name"`
	Optimize bool   `json:"optimize,omitempty"`
}

// LoadSettingsResponse is the load_settings output.
type LoadSettingsResponse struct {
	Settings *shield.SavedSettings `json:"settings"`
	Result   *shield.Result        `json:"result,omitempty"`
}

func (s *Server) toolLoadSettings(ctx context.Context, args json.RawMessage) (any, error) {
	var a LoadSettingsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	saved, err := s.engine.LoadSettings(ctx, a.Name)
	if err != nil {
		return nil, err
	}
	resp := LoadSettingsResponse{Settings: saved}
	if a.Optimize {
		if resp.Result, err = s.engine.Optimize(ctx, saved.Request); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// ListSettingsResponse is the list_settings output.
type ListSettingsResponse struct {
	Settings []shield.SavedSettings `json:"settings"`
}

func (s *Server) toolListSettings(ctx context.Context, _ json.RawMessage) (any, error) {
	list, err := s.engine.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []shield.SavedSettings{}
	}
	return ListSettingsResponse{Settings: list}, nil
}

func (s *Server) toolDeleteSettings(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		Name string `json:"name"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.engine.DeleteSettings(ctx, a.Name); err != nil {
		return nil, err
	}
	return map[string]string{"deleted": a.Name}, nil
}
