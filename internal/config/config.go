package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds everything the service reads from the environment. main loads
// a .env first, so a local run only needs the file.
type Config struct {
	Port string `env:"PORT" env-default:"8080"`
	Env  string `env:"ENVIRONMENT" env-default:"local"`

	// Excel sheet holding the repairable-anomaly table. The inspection
	// vendor exports it under this Russian name.
	AnomalySheet string `env:"ANOMALY_SHEET" env-default:"Аномалии подлежащие ремонту"`

	// Defaults used when no CSV metadata accompanies the upload.
	PipelineName string `env:"PIPELINE_NAME" env-default:"Основной трубопровод"`
	SegmentKM    string `env:"SEGMENT_KM" env-default:"0-15"`
	DiameterMM   int    `env:"DIAMETER_MM" env-default:"530"`
	Method       string `env:"INSPECTION_METHOD" env-default:"Магнитоскан (MFL)"`

	// Base drawing the scheme renderer overlays defects onto.
	SchemePath string `env:"SCHEME_PATH" env-default:"scheme.png"`
	FontPath   string `env:"SCHEME_FONT" env-default:"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"`

	Risk RiskConfig
	LLM  LLMConfig
}

// RiskConfig carries the classification thresholds and the repair-flag trigger
// phrases. The phrases are a narrow locale-specific heuristic, so they are
// configuration rather than literals in the classifier.
type RiskConfig struct {
	ERFHighRisk      float64 `env:"RISK_ERF_HIGH" env-default:"0.8"`
	ERFMediumRisk    float64 `env:"RISK_ERF_MEDIUM" env-default:"0.5"`
	WallCriticalMM   float64 `env:"RISK_WALL_CRITICAL_MM" env-default:"3.0"`
	DepthCriticalPct float64 `env:"RISK_DEPTH_CRITICAL_PCT" env-default:"40"`
	DepthHighPct     float64 `env:"RISK_DEPTH_HIGH_PCT" env-default:"25"`

	// Comma-separated substrings of the repair flag that force High risk.
	RepairTriggersStr string `env:"RISK_REPAIR_TRIGGERS" env-default:"обязателен,немедленн"`
}

// RepairTriggers returns the parsed trigger list, lowercased and trimmed.
func (r RiskConfig) RepairTriggers() []string {
	var out []string
	for _, t := range strings.Split(r.RepairTriggersStr, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// LLMConfig points at an OpenAI-compatible chat completion gateway.
type LLMConfig struct {
	Endpoint string `env:"LLM_ENDPOINT" env-default:"https://api.openai.com/v1"`
	APIKey   string `env:"LLM_API_KEY" env-default:""`
	Model    string `env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	UseMock  bool   `env:"USE_MOCK_LLM" env-default:"false"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, nil
}
