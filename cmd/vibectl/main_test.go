package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vibestack/vibestack-backend/internal/recommendation/domain"
	"github.com/vibestack/vibestack-backend/internal/recommendation/engine"
)

func TestParseAnswers(t *testing.T) {
	answers, err := parseAnswers([]string{"goal=ui", "budget=paid"})
	require.NoError(t, err)
	assert.Equal(t, "ui", answers.Get(domain.KeyGoal))

	_, err = parseAnswers([]string{"goal"})
	assert.Error(t, err)

	_, err = parseAnswers([]string{"mood=happy"})
	assert.Error(t, err)
}

func TestRunRecommend_PrintsYAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runRecommend(&out, engine.Default(), []string{"goal=ui", "experience=beginner"}))

	var rec domain.StackRecommendation
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, domain.BundleMagicWand, rec.ID)
}

func TestRunRecommend_NoAnswers(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runRecommend(&out, engine.Default(), nil))
	assert.Contains(t, out.String(), "id: "+domain.BundleUniversal)
}
