// Package exam generates practice exams from learning objectives through a
// JSON-mode chat completion.
package exam

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/WWTD-Production/Server/llm"
)

// Problem is one exam problem. Content is LaTeX; the problems are generated
// unsolved.
type Problem struct {
	ProblemNumber int    `json:"problemNumber"`
	ProblemType   string `json:"problemType"`
	Content       string `json:"content"`
	TotalPoints   int    `json:"totalPoints"`
	Difficulty    int    `json:"difficulty"`
}

// Completer is the slice of the LLM client the generator needs.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error)
}

// Generator turns learning objectives into validated problem sets.
type Generator struct {
	completer Completer
	model     string
}

func NewGenerator(completer Completer, model string) *Generator {
	return &Generator{completer: completer, model: model}
}

// BuildPrompt renders the exam-generation prompt for the given objectives.
func BuildPrompt(learningObjectives string) string {
	return fmt.Sprintf(`Create a practice exam for the learning objectives listed below. Write the problem content in LaTeX format. Do not solve the problems. Respond with a JSON array where each problem conforms to the following schema:
{
  "problemNumber": "Integer",
  "problemType": "String (either 'multiple_choice', 'free_response', or 'other')",
  "content": "String",
  "totalPoints": "Integer",
  "difficulty": "Integer (scale from 1-10, 10 being the hardest)"
}

Learning Objectives for the Exam:
%s`, learningObjectives)
}

// Generate requests a problem set and validates it before returning.
func (g *Generator) Generate(ctx context.Context, learningObjectives string) ([]Problem, error) {
	if strings.TrimSpace(learningObjectives) == "" {
		return nil, fmt.Errorf("no learning objectives provided")
	}

	resp, err := g.completer.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model: g.model,
		Messages: []llm.ChatMessage{
			{Role: "user", Content: BuildPrompt(learningObjectives)},
		},
		ResponseFormat: map[string]any{"type": "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("generate exam: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return nil, fmt.Errorf("generate exam: empty completion")
	}

	problems, err := ParseProblems(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("generate exam: %w", err)
	}
	return problems, nil
}

// ParseProblems accepts either a bare JSON array or an object wrapping one
// under "problems", since JSON-mode models return both shapes.
func ParseProblems(raw string) ([]Problem, error) {
	raw = strings.TrimSpace(raw)

	var problems []Problem
	if err := json.Unmarshal([]byte(raw), &problems); err != nil {
		var wrapped struct {
			Problems []Problem `json:"problems"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
			return nil, fmt.Errorf("unmarshal problems: %w", err)
		}
		problems = wrapped.Problems
	}

	if len(problems) == 0 {
		return nil, fmt.Errorf("no problems in response")
	}
	for i, p := range problems {
		if err := validateProblem(p); err != nil {
			return nil, fmt.Errorf("problem %d: %w", i+1, err)
		}
	}
	return problems, nil
}

func validateProblem(p Problem) error {
	if p.Content == "" {
		return fmt.Errorf("empty content")
	}
	switch p.ProblemType {
	case "multiple_choice", "free_response", "other":
	default:
		return fmt.Errorf("unknown problem type %q", p.ProblemType)
	}
	if p.Difficulty < 1 || p.Difficulty > 10 {
		return fmt.Errorf("difficulty %d out of range", p.Difficulty)
	}
	return nil
}
