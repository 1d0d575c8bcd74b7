package service

import (
	"strings"

	"github.com/agrisense-ai/agrisense-backend/internal/llm"
	"github.com/agrisense-ai/agrisense-backend/internal/model"
)

// ChatContext is everything the assistant needs for one generation:
// the user's farming profile, an optional weather snapshot, the recent
// history in chronological order, and the new question.
type ChatContext struct {
	Profile  *model.User
	Weather  *model.WeatherSnapshot
	History  []model.Message
	Question string
}

// primingAck is the canned model acknowledgement that follows the
// priming turn, so the replayed conversation starts in a known state.
const primingAck = "了解しました。農業に関するご質問にお答えします。"

// BuildSystemPrompt renders the assistant persona and the per-user
// context block. Profile fields render only when present; the weather
// block renders only when a snapshot was obtained.
func BuildSystemPrompt(c *ChatContext) string {
	var b strings.Builder

	b.WriteString(`あなたは日本の農家向けのAIアシスタント「AgriSense」です。
農業に関する質問に、親切で専門的に答えてください。

【あなたの専門分野】
1. 作物栽培管理（植え付け、収穫時期、肥料、水やり）
2. 病害虫対策（予防、早期発見、対処法）
3. 天候に応じた農作業アドバイス
4. 有機農法・減農薬栽培の技術
5. 収穫量向上のヒント
6. 季節ごとの農作業カレンダー
7. 農業機械・設備のアドバイス

【回答の方針】
- 具体的で実践的なアドバイスを提供
- 現在の天気・季節を考慮
- ユーザーの栽培作物と農法に合わせる
- 日本の気候・土壌条件に適した方法を推奨
- 必要に応じて注意事項や警告を含める

`)

	profile := c.Profile
	b.WriteString("【ユーザー情報】\n")
	b.WriteString("名前: " + profile.Name + "さん\n")

	switch {
	case profile.Prefecture != nil && profile.City != nil:
		b.WriteString("地域: " + *profile.Prefecture + *profile.City + "\n")
	case profile.City != nil:
		b.WriteString("地域: " + *profile.City + "\n")
	}

	if profile.FarmSize != nil {
		b.WriteString("農地面積: " + *profile.FarmSize + "\n")
	}
	if len(profile.CropTypes) > 0 {
		b.WriteString("栽培作物: " + strings.Join(profile.CropTypes, ", ") + "\n")
	}
	if len(profile.FarmingMethods) > 0 {
		b.WriteString("農法: " + strings.Join(profile.FarmingMethods, ", ") + "\n")
	}

	if c.Weather != nil {
		b.WriteString("\n【現在の天気】\n")
		b.WriteString("気温: " + c.Weather.Temperature + "\n")
		b.WriteString("湿度: " + c.Weather.Humidity + "\n")
		b.WriteString("天気: " + c.Weather.Description + "\n")
		b.WriteString("降水量: " + c.Weather.Rainfall + "\n")
	}

	b.WriteString("\nこの情報を考慮して、ユーザーの質問に答えてください。\n")
	b.WriteString("天気や栽培作物に応じた具体的なアドバイスを提供してください。\n")

	return b.String()
}

// BuildConversation assembles the full role-tagged sequence sent to the
// model: the priming text as an initial user turn, a canned assistant
// acknowledgement, the history in chronological order, and the new
// question as the final user turn.
func BuildConversation(c *ChatContext) []llm.ChatMessage {
	messages := make([]llm.ChatMessage, 0, len(c.History)+3)

	messages = append(messages,
		llm.ChatMessage{Role: "user", Content: BuildSystemPrompt(c)},
		llm.ChatMessage{Role: "assistant", Content: primingAck},
	)

	for _, msg := range c.History {
		role := "user"
		if msg.Role == model.RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, llm.ChatMessage{Role: role, Content: msg.Content})
	}

	messages = append(messages, llm.ChatMessage{Role: "user", Content: c.Question})

	return messages
}
