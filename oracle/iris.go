package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	iriscore "github.com/petal-labs/iris/core"
	"github.com/petal-labs/iris/providers"
	// Auto-register common providers.
	_ "github.com/petal-labs/iris/providers/anthropic"
	_ "github.com/petal-labs/iris/providers/ollama"
	_ "github.com/petal-labs/iris/providers/openai"

	"github.com/purelink-labs/purelink/core"
	"github.com/purelink-labs/purelink/verify"
)

// Sampling parameters per operation. Resolution and judgment want
// deterministic output; discovery is allowed to range a little.
const (
	resolveTemperature  float32 = 0
	discoverTemperature float32 = 0.3
	judgeTemperature    float32 = 0

	resolveMaxTokens  = 1024
	discoverMaxTokens = 4096
	judgeMaxTokens    = 64
)

// chatClient is the slice of the iris provider the gateway needs.
// Satisfied by iriscore.Provider; tests inject fakes.
type chatClient interface {
	Chat(ctx context.Context, req *iriscore.ChatRequest) (*iriscore.ChatResponse, error)
}

// IrisGateway implements Gateway on top of an iris chat provider.
type IrisGateway struct {
	client chatClient
	cfg    Config
	logger *slog.Logger
}

// NewIrisGateway creates a gateway for the named provider using the iris
// provider registry.
func NewIrisGateway(providerName, apiKey string, cfg Config, logger *slog.Logger) (*IrisGateway, error) {
	provider, err := providers.Create(providerName, apiKey)
	if err != nil {
		return nil, fmt.Errorf("oracle: creating provider %q: %w", providerName, err)
	}
	return newIrisGateway(provider, cfg, logger), nil
}

func newIrisGateway(client chatClient, cfg Config, logger *slog.Logger) *IrisGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &IrisGateway{client: client, cfg: cfg.withDefaults(), logger: logger}
}

// Model returns the configured model identifier, for record metadata.
func (g *IrisGateway) Model() string {
	return g.cfg.Model
}

// resolutionWire mirrors the JSON shape the resolution prompt requests.
type resolutionWire struct {
	Candidates []struct {
		ToolName      string  `json:"tool_name"`
		Developer     string  `json:"developer"`
		WebsiteDomain string  `json:"website_domain"`
		WebsiteURL    string  `json:"website_url"`
		Confidence    float64 `json:"confidence"`
		Notes         string  `json:"notes"`
	} `json:"candidates"`
	SelectedIndex  int      `json:"selected_index"`
	Disambiguation string   `json:"disambiguation"`
	Citations      []string `json:"citations"`
}

// ResolveCandidates implements Gateway.
func (g *IrisGateway) ResolveCandidates(ctx context.Context, query string) (core.Resolution, error) {
	out, err := g.chat(ctx, resolveSystem, resolvePrompt(query, g.cfg.MaxProposals), resolveTemperature, resolveMaxTokens)
	if err != nil {
		return core.Resolution{}, err
	}

	var wire resolutionWire
	if err := decodeJSON(out, &wire); err != nil {
		g.logger.Warn("unusable resolution response", "error", err)
		return core.Resolution{}, fmt.Errorf("%w: %v", core.ErrOracleUnavailable, err)
	}

	res := core.Resolution{
		SelectedIndex:  wire.SelectedIndex,
		Disambiguation: wire.Disambiguation,
		Citations:      wire.Citations,
	}
	for i, c := range wire.Candidates {
		if i >= g.cfg.MaxProposals {
			break
		}
		res.Candidates = append(res.Candidates, core.ToolCandidate{
			ToolName:      c.ToolName,
			Developer:     c.Developer,
			WebsiteDomain: c.WebsiteDomain,
			WebsiteURL:    c.WebsiteURL,
			Confidence:    c.Confidence,
			Notes:         c.Notes,
		})
	}
	return res, nil
}

// methodWire mirrors the JSON shape the discovery prompt requests.
type methodWire struct {
	MethodType string  `json:"method_type"`
	MethodName string  `json:"method_name"`
	Endpoint   string  `json:"endpoint"`
	DocsURL    string  `json:"docs_url"`
	AuthType   string  `json:"auth_type"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes"`
}

// DiscoverMethods implements Gateway.
func (g *IrisGateway) DiscoverMethods(ctx context.Context, cand core.ToolCandidate) ([]core.OutputMethod, error) {
	out, err := g.chat(ctx, discoverSystem, discoverPrompt(cand, g.cfg.MaxProposals), discoverTemperature, discoverMaxTokens)
	if err != nil {
		return nil, err
	}

	var wires []methodWire
	if err := decodeJSON(out, &wires); err != nil {
		// Some models wrap the array in an object.
		var wrapped struct {
			Methods []methodWire `json:"methods"`
		}
		if werr := decodeJSON(out, &wrapped); werr != nil || wrapped.Methods == nil {
			g.logger.Warn("unusable discovery response", "error", err)
			return nil, fmt.Errorf("%w: %v", core.ErrOracleUnavailable, err)
		}
		wires = wrapped.Methods
	}

	methods := make([]core.OutputMethod, 0, len(wires))
	for i, w := range wires {
		if i >= g.cfg.MaxProposals {
			break
		}
		methods = append(methods, core.OutputMethod{
			Type:       parseMethodType(w.MethodType),
			Name:       w.MethodName,
			Endpoint:   w.Endpoint,
			DocsURL:    w.DocsURL,
			AuthType:   w.AuthType,
			Confidence: w.Confidence,
			Notes:      w.Notes,
		})
	}
	return methods, nil
}

// JudgeRelevance implements verify.RelevanceJudge.
func (g *IrisGateway) JudgeRelevance(ctx context.Context, j verify.Judgment) (float64, error) {
	out, err := g.chat(ctx, judgeSystem, judgePrompt(j), judgeTemperature, judgeMaxTokens)
	if err != nil {
		return 0, err
	}
	score, err := parseScore(out)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrOracleUnavailable, err)
	}
	return score, nil
}

func (g *IrisGateway) chat(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	req := &iriscore.ChatRequest{
		Model: iriscore.ModelID(g.cfg.Model),
		Messages: []iriscore.Message{
			{Role: iriscore.RoleSystem, Content: system},
			{Role: iriscore.RoleUser, Content: user},
		},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}

	resp, err := g.client.Chat(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", core.ErrOracleTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", core.ErrOracleUnavailable, err)
	}
	if resp == nil || resp.Output == "" {
		return "", core.ErrOracleUnavailable
	}
	return resp.Output, nil
}

// parseMethodType maps oracle method type strings onto the known set,
// including the legacy shorthand some prompt generations produce.
func parseMethodType(s string) core.MethodType {
	switch core.MethodType(s) {
	case core.MethodAPI, core.MethodManagedConnector, core.MethodExport,
		core.MethodWebhook, core.MethodDatabase, core.MethodThirdParty:
		return core.MethodType(s)
	}
	switch s {
	case "mcp":
		return core.MethodManagedConnector
	case "connector":
		return core.MethodThirdParty
	default:
		return core.MethodAPI
	}
}

var _ Gateway = (*IrisGateway)(nil)
