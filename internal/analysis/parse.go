package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mikey/english-buddy/internal/core"
)

// analyzerResponse mirrors the JSON contract the providers are instructed
// to follow
type analyzerResponse struct {
	HasErrors        bool            `json:"has_errors"`
	UserText         string          `json:"user_text"`
	Errors           []analyzerError `json:"errors"`
	BetterExpression *string         `json:"better_expression"`
	Summary          string          `json:"summary"`
	Skipped          bool            `json:"skipped"`
}

type analyzerError struct {
	Original    string `json:"original"`
	Correction  string `json:"correction"`
	Explanation string `json:"explanation"`
	Category    string `json:"category"`
}

// ParseAnalysis decodes a model response into a GrammarAnalysis. Models
// sometimes wrap the JSON in prose or code fences, so a failed strict parse
// falls back to the largest brace-delimited substring before giving up.
func ParseAnalysis(raw string) (*core.GrammarAnalysis, error) {
	responseText := strings.TrimSpace(raw)

	var resp analyzerResponse
	if err := json.Unmarshal([]byte(responseText), &resp); err != nil {
		// Extract JSON portion if the model wrapped it in other text
		jsonStart := 0
		jsonEnd := len(responseText)

		for i := 0; i < len(responseText); i++ {
			if responseText[i] == '{' {
				jsonStart = i
				break
			}
		}

		for i := len(responseText) - 1; i >= 0; i-- {
			if responseText[i] == '}' {
				jsonEnd = i + 1
				break
			}
		}

		if jsonStart < jsonEnd {
			jsonStr := responseText[jsonStart:jsonEnd]
			if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
				return nil, fmt.Errorf("failed to parse analyzer response: %w", err)
			}
		} else {
			return nil, fmt.Errorf("no JSON object in analyzer response")
		}
	}

	return resp.toAnalysis(), nil
}

func (r *analyzerResponse) toAnalysis() *core.GrammarAnalysis {
	analysis := &core.GrammarAnalysis{
		HasErrors:        r.HasErrors,
		UserText:         r.UserText,
		BetterExpression: r.BetterExpression,
		Summary:          r.Summary,
		Skipped:          r.Skipped,
	}
	for _, e := range r.Errors {
		analysis.Findings = append(analysis.Findings, core.Finding{
			Original:    e.Original,
			Correction:  e.Correction,
			Explanation: e.Explanation,
			Category:    core.NormalizeCategory(e.Category),
		})
	}
	return analysis
}
