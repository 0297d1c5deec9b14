package report

import (
	"context"
	"encoding/json"
	"fmt"

	"pipeline-insights-go/internal/llm"
	"pipeline-insights-go/internal/types"
)

// InfraDefect is one defect entry inside an infrastructure group of the
// question context.
type InfraDefect struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Risk  string `json:"risk"`
	Depth string `json:"depth"`
}

// questionContext is the report context enriched with the per-infrastructure
// defect groups, so location questions can be answered from data.
type questionContext struct {
	Context
	InfrastructureGroups map[string][]InfraDefect `json:"infrastructure_groups"`
}

// GroupDefects buckets defects by their classified infrastructure location.
func GroupDefects(defects []types.DefectRecord) map[string][]InfraDefect {
	na := func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	}

	groups := map[string][]InfraDefect{}
	for i, rec := range defects {
		loc := rec.InfraLocation
		if loc == "" {
			loc = "неизвестно"
		}
		id := rec.Identification
		if id == "" {
			id = fmt.Sprintf("DEF-%d", i+1)
		}
		depth := "N/A"
		if rec.DepthPct != nil {
			depth = fmt.Sprintf("%g", *rec.DepthPct)
		}
		groups[loc] = append(groups[loc], InfraDefect{
			ID:    id,
			Type:  na(rec.AnomalyType),
			Risk:  na(string(rec.RiskClass)),
			Depth: depth,
		})
	}
	return groups
}

// AnswerQuestion answers a free-text engineering question over the current
// inspection, grounding the model on the report context plus the
// infrastructure groups.
func AnswerQuestion(ctx context.Context, gen llm.Generator, rc Context, defects []types.DefectRecord, question string) (string, error) {
	qc := questionContext{Context: rc, InfrastructureGroups: GroupDefects(defects)}
	data, err := json.MarshalIndent(qc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal question context: %w", err)
	}
	user := fmt.Sprintf("%s\n\nКОНТЕКСТ ДАННЫХ:\n```json\n%s\n```", question, data)
	return gen.Generate(ctx, systemPrompt, user)
}
