package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/agrisense-ai/agrisense-backend/internal/model"
)

func strPtr(s string) *string { return &s }

func fullProfile() *model.User {
	return &model.User{
		Name:           "田中",
		City:           strPtr("つくば市"),
		Prefecture:     strPtr("茨城県"),
		FarmSize:       strPtr("2ha"),
		CropTypes:      datatypes.JSONSlice[string]{"トマト", "きゅうり"},
		FarmingMethods: datatypes.JSONSlice[string]{"有機栽培"},
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	t.Run("full profile with weather", func(t *testing.T) {
		ctx := &ChatContext{
			Profile: fullProfile(),
			Weather: &model.WeatherSnapshot{
				Temperature: "22°C",
				Humidity:    "65%",
				Condition:   "clouds",
				Description: "曇りがち",
				Rainfall:    "0mm",
			},
			Question: "トマトの水やりは？",
		}

		prompt := BuildSystemPrompt(ctx)

		assert.Contains(t, prompt, "AgriSense")
		assert.Contains(t, prompt, "名前: 田中さん")
		assert.Contains(t, prompt, "地域: 茨城県つくば市")
		assert.Contains(t, prompt, "農地面積: 2ha")
		assert.Contains(t, prompt, "栽培作物: トマト, きゅうり")
		assert.Contains(t, prompt, "農法: 有機栽培")
		assert.Contains(t, prompt, "【現在の天気】")
		assert.Contains(t, prompt, "気温: 22°C")
		assert.Contains(t, prompt, "湿度: 65%")
		assert.Contains(t, prompt, "天気: 曇りがち")
		assert.Contains(t, prompt, "降水量: 0mm")
	})

	t.Run("minimal profile omits optional lines", func(t *testing.T) {
		ctx := &ChatContext{
			Profile:  &model.User{Name: "佐藤"},
			Question: "こんにちは",
		}

		prompt := BuildSystemPrompt(ctx)

		assert.Contains(t, prompt, "名前: 佐藤さん")
		assert.NotContains(t, prompt, "地域:")
		assert.NotContains(t, prompt, "農地面積:")
		assert.NotContains(t, prompt, "栽培作物:")
		assert.NotContains(t, prompt, "農法:")
		assert.NotContains(t, prompt, "【現在の天気】")
	})

	t.Run("city without prefecture", func(t *testing.T) {
		ctx := &ChatContext{
			Profile: &model.User{Name: "佐藤", City: strPtr("札幌市")},
		}

		assert.Contains(t, BuildSystemPrompt(ctx), "地域: 札幌市\n")
	})

	t.Run("no weather block without snapshot", func(t *testing.T) {
		ctx := &ChatContext{Profile: fullProfile()}

		prompt := BuildSystemPrompt(ctx)

		assert.NotContains(t, prompt, "【現在の天気】")
		assert.NotContains(t, prompt, "気温:")
	})
}

func TestBuildConversation(t *testing.T) {
	t.Run("priming turns bracket the history", func(t *testing.T) {
		ctx := &ChatContext{
			Profile: fullProfile(),
			History: []model.Message{
				{Role: model.RoleUser, Content: "種まきの時期は？"},
				{Role: model.RoleAssistant, Content: "3月中旬が適期です。"},
			},
			Question: "肥料はどうすれば？",
		}

		msgs := BuildConversation(ctx)
		require.Len(t, msgs, 5)

		assert.Equal(t, "user", msgs[0].Role)
		assert.True(t, strings.Contains(msgs[0].Content, "AgriSense"))

		assert.Equal(t, "assistant", msgs[1].Role)
		assert.Equal(t, "了解しました。農業に関するご質問にお答えします。", msgs[1].Content)

		assert.Equal(t, "user", msgs[2].Role)
		assert.Equal(t, "種まきの時期は？", msgs[2].Content)
		assert.Equal(t, "assistant", msgs[3].Role)
		assert.Equal(t, "3月中旬が適期です。", msgs[3].Content)

		assert.Equal(t, "user", msgs[4].Role)
		assert.Equal(t, "肥料はどうすれば？", msgs[4].Content)
	})

	t.Run("empty history yields three turns", func(t *testing.T) {
		ctx := &ChatContext{
			Profile:  &model.User{Name: "佐藤"},
			Question: "はじめまして",
		}

		msgs := BuildConversation(ctx)
		require.Len(t, msgs, 3)
		assert.Equal(t, "はじめまして", msgs[2].Content)
	})
}
