package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"rolechat/internal/config"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// claude requires an explicit output ceiling at construction time. The
// effective per-request ceiling is applied by the reply service.
const claudeMaxTokens = 3000

// NewChatModel builds the chat model for the named provider. The API key
// comes from the provider config or, when absent there, from the
// conventional environment variable for that provider.
func NewChatModel(ctx context.Context, provider string, provCfg config.ProviderConfig) (model.BaseChatModel, error) {
	apiKey := resolveAPIKey(provider, provCfg)
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured for provider %s", provider)
	}
	modelType := provCfg.Model
	if modelType == "" {
		return nil, fmt.Errorf("no model configured for provider %s", provider)
	}

	switch provider {
	case "openai":
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: provCfg.BaseURL,
			Model:   modelType,
			APIKey:  apiKey,
		})
	case "claude":
		var baseURLPtr *string
		if provCfg.BaseURL != "" {
			baseURLPtr = &provCfg.BaseURL
		}
		return claude.NewChatModel(ctx, &claude.Config{
			APIKey:    apiKey,
			Model:     modelType,
			BaseURL:   baseURLPtr,
			MaxTokens: claudeMaxTokens,
		})
	case "gemini":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  modelType,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", provider)
	}
}

// HasCredentials reports whether a key is available without building the
// model, so startup can fail fast on missing configuration.
func HasCredentials(provider string, provCfg config.ProviderConfig) bool {
	return resolveAPIKey(provider, provCfg) != ""
}

func resolveAPIKey(provider string, provCfg config.ProviderConfig) string {
	if key := strings.TrimSpace(provCfg.APIKey); key != "" {
		return key
	}
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "claude":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return ""
	}
}
