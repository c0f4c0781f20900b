package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vibestack/vibestack-backend/internal/recommendation/domain"
	"github.com/vibestack/vibestack-backend/internal/recommendation/engine"
)

var bundlesPath string

var recommendCmd = &cobra.Command{
	Use:   "recommend [key=value ...]",
	Short: "Print the bundle recommended for a set of quiz answers",
	Long: `Runs the recommendation engine locally and prints the result as YAML.

Keys: goal, experience, environment, team, budget, workflow.
Example:
  vibectl recommend goal=ui experience=beginner`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := bundlesPath
		if path == "" {
			path = cfg.Recommendation.BundlesPath
		}
		e, err := engine.Load(path)
		if err != nil {
			return err
		}
		return runRecommend(cmd.OutOrStdout(), e, args)
	},
}

func runRecommend(out io.Writer, e *engine.Engine, args []string) error {
	answers, err := parseAnswers(args)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(e.Recommend(answers)); err != nil {
		return err
	}
	return enc.Close()
}

func parseAnswers(args []string) (domain.QuizAnswers, error) {
	answers := make(domain.QuizAnswers, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		if !domain.IsQuestionKey(k) {
			return nil, fmt.Errorf("unknown question %q", k)
		}
		answers[k] = v
	}
	return answers, nil
}
