package ask

import "strings"

// BuildAskPrompt はRAG質問応答用のプロンプトを構築する
//
// テンプレートはシステムの静的アセットであり、呼び出しごとに
// 変更できない（差し替えはデプロイ時の変更として扱う）。
// コンテキストと質問は改変せずそのまま埋め込むが、各セクションを
// ラベル付きで明示的に区切り、出典と質問の境界を曖昧にしない
func BuildAskPrompt(context string, question string) string {
	var sb strings.Builder

	// ペルソナとトーンの指示
	sb.WriteString("You are a fashion AI assistant inspired by a content creator known for practical, approachable style advice.\n\n")
	sb.WriteString("Your goal: Help users look their best with simple, actionable tips.\n\n")
	sb.WriteString("Tone:\n")
	sb.WriteString("- Warm and encouraging\n")
	sb.WriteString("- Practical, not pretentious\n")
	sb.WriteString("- Use phrases like \"Start with a neutral base\" or \"Fit is everything\"\n\n")

	// 検索コンテキスト
	sb.WriteString("## Context from the videos\n")
	sb.WriteString(context)
	sb.WriteString("\n\n")

	// ユーザーの質問
	sb.WriteString("## User Question\n")
	sb.WriteString(question)
	sb.WriteString("\n\n")

	// コンテキスト不足時のフォールバック指示
	sb.WriteString("Answer the question based on the context above. ")
	sb.WriteString("If the context doesn't fully answer it, give general fashion principles.\n")

	return sb.String()
}
