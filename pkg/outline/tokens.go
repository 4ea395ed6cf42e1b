package outline

import "math"

// TokenCounter estimates model tokens from character counts using a fixed
// chars-per-token ratio. A proper tokenizer would be more accurate, but the
// estimate only drives chunk sizing, where a safety margin absorbs the error.
type TokenCounter struct {
	charsPerToken float64
}

// safetyMargin keeps estimated chunks comfortably under the model budget.
const safetyMargin = 0.9

func NewTokenCounter(charsPerToken float64) *TokenCounter {
	if charsPerToken <= 0 {
		charsPerToken = 4.0
	}
	return &TokenCounter{charsPerToken: charsPerToken}
}

// EstimateTokens returns the estimated token count for text.
func (t *TokenCounter) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return int(math.Ceil(float64(len(text)) / t.charsPerToken))
}

// ExceedsLimit reports whether text is estimated to exceed tokenLimit.
func (t *TokenCounter) ExceedsLimit(text string, tokenLimit int) bool {
	return t.EstimateTokens(text) > tokenLimit
}

// MaxCharsForTokens converts a token budget into a character budget.
func (t *TokenCounter) MaxCharsForTokens(tokenCount int) int {
	if tokenCount <= 0 {
		return 0
	}
	return int(float64(tokenCount) * t.charsPerToken)
}

// SafeChunkSizeChars returns the character budget for one chunk given the
// model's max tokens and the tokens reserved for prompt scaffolding.
func (t *TokenCounter) SafeChunkSizeChars(modelMaxTokens, promptOverheadTokens int) int {
	usable := modelMaxTokens - promptOverheadTokens
	if usable <= 0 {
		usable = modelMaxTokens / 2
	}
	return int(float64(t.MaxCharsForTokens(usable)) * safetyMargin)
}
