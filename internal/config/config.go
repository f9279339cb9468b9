// Package config loads quizbot settings from the environment and an
// optional quizbot.yaml file. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/quizbot/internal/llm"
	"github.com/abhisek/quizbot/internal/logger"
	"github.com/abhisek/quizbot/internal/quizgen"
)

// Config is everything the commands need to build a Generator.
type Config struct {
	LLM       llm.Config
	Generator quizgen.Config
	Log       logger.Config

	// DBPath is the usage ledger location. Empty means store.DefaultDBPath.
	DBPath string

	// File is the config file that was read, empty if none.
	File string
}

// Keys. Each is also read from the upper-cased environment variable.
const (
	keyGeminiAPIKey     = "gemini_api_key"
	keyGeminiModel      = "gemini_model"
	keyGeminiBaseURL    = "gemini_base_url"
	keyGeminiMaxTokens  = "gemini_max_output_tokens"
	keyDeepSeekAPIKey   = "deepseek_api_key"
	keyDeepSeekModel    = "deepseek_model"
	keyDeepSeekBaseURL  = "deepseek_base_url"
	keyDeepSeekMaxToken = "deepseek_max_tokens"
	keyGroqAPIKey       = "groq_api_key"
	keyGroqModel        = "groq_model"
	keyGroqBaseURL      = "groq_base_url"
	keyGroqMaxTokens    = "groq_max_tokens"
	keyAnthropicAPIKey  = "anthropic_api_key"
	keyAnthropicModel   = "anthropic_model"
	keyAnthropicBaseURL = "anthropic_base_url"
	keyAnthropicTokens  = "anthropic_max_tokens"
	keyJSONMode         = "llm_json_mode"
	keyMaxConcurrency   = "llm_max_concurrency"
	keyMaxRetryDelayMS  = "llm_max_retry_delay_ms"
	keyMaxTotalMS       = "llm_max_total_ms"
	keyTextWindow       = "quiz_text_window"
	keyDB               = "quizbot_db"
	keyLogLevel         = "log_level"
	keyLogFormat        = "log_format"
)

func setDefaults(v *viper.Viper) {
	lc := llm.DefaultConfig()
	gc := quizgen.DefaultConfig()

	v.SetDefault(keyGeminiMaxTokens, lc.Gemini.MaxOutputTokens)
	v.SetDefault(keyDeepSeekBaseURL, lc.DeepSeek.BaseURL)
	v.SetDefault(keyDeepSeekMaxToken, lc.DeepSeek.MaxTokens)
	v.SetDefault(keyGroqBaseURL, lc.Groq.BaseURL)
	v.SetDefault(keyGroqMaxTokens, lc.Groq.MaxTokens)
	v.SetDefault(keyAnthropicTokens, lc.Anthropic.MaxTokens)
	v.SetDefault(keyJSONMode, lc.JSONMode)
	v.SetDefault(keyMaxConcurrency, gc.MaxConcurrency)
	v.SetDefault(keyMaxRetryDelayMS, gc.MaxRetryDelay.Milliseconds())
	v.SetDefault(keyMaxTotalMS, gc.MaxTotal.Milliseconds())
	v.SetDefault(keyTextWindow, gc.TextWindow)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "console")
}

// Load reads configuration. When file is empty, quizbot.yaml is looked
// up in the working directory and in $XDG_CONFIG_HOME/quizbot; a missing
// file is not an error. An explicit file must exist.
func Load(file string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("quizbot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := configHome(); dir != "" {
			v.AddConfigPath(filepath.Join(dir, "quizbot"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		LLM:       llm.DefaultConfig(),
		Generator: quizgen.DefaultConfig(),
		DBPath:    v.GetString(keyDB),
		File:      v.ConfigFileUsed(),
		Log: logger.Config{
			Level:  v.GetString(keyLogLevel),
			Format: v.GetString(keyLogFormat),
		},
	}

	cfg.LLM.Gemini = llm.GeminiConfig{
		APIKeys:         keys(v, keyGeminiAPIKey),
		Model:           v.GetString(keyGeminiModel),
		BaseURL:         v.GetString(keyGeminiBaseURL),
		MaxOutputTokens: v.GetInt(keyGeminiMaxTokens),
	}
	cfg.LLM.DeepSeek = llm.OpenAIConfig{
		APIKeys:   keys(v, keyDeepSeekAPIKey),
		Model:     v.GetString(keyDeepSeekModel),
		BaseURL:   v.GetString(keyDeepSeekBaseURL),
		MaxTokens: v.GetInt(keyDeepSeekMaxToken),
	}
	cfg.LLM.Groq = llm.OpenAIConfig{
		APIKeys:   keys(v, keyGroqAPIKey),
		Model:     v.GetString(keyGroqModel),
		BaseURL:   v.GetString(keyGroqBaseURL),
		MaxTokens: v.GetInt(keyGroqMaxTokens),
	}
	cfg.LLM.Anthropic = llm.AnthropicConfig{
		APIKeys:   keys(v, keyAnthropicAPIKey),
		Model:     v.GetString(keyAnthropicModel),
		BaseURL:   v.GetString(keyAnthropicBaseURL),
		MaxTokens: v.GetInt(keyAnthropicTokens),
	}
	cfg.LLM.JSONMode = v.GetBool(keyJSONMode)

	cfg.Generator.MaxConcurrency = v.GetInt(keyMaxConcurrency)
	cfg.Generator.MaxRetryDelay = time.Duration(v.GetInt64(keyMaxRetryDelayMS)) * time.Millisecond
	cfg.Generator.MaxTotal = time.Duration(v.GetInt64(keyMaxTotalMS)) * time.Millisecond
	cfg.Generator.TextWindow = v.GetInt(keyTextWindow)

	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Generator.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// keys reads an API key setting given either as a comma-separated string
// or, in the config file, as a list.
func keys(v *viper.Viper, key string) []string {
	if list, ok := v.Get(key).([]any); ok {
		var out []string
		for _, item := range list {
			out = append(out, llm.SplitKeys(fmt.Sprint(item))...)
		}
		return out
	}
	return llm.SplitKeys(v.GetString(key))
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}
