package textprep

import (
	"sync"
	"unicode/utf8"

	"BotDesk/pkg/zlog"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

const encodingName = "cl100k_base"

var (
	tokenizer     *tiktoken.Tiktoken
	tokenizerOnce sync.Once
	tokenizerErr  error
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tokenizerOnce.Do(func() {
		tokenizer, tokenizerErr = tiktoken.GetEncoding(encodingName)
		if tokenizerErr != nil {
			zlog.Warn("tokenizer unavailable, using rune estimate", zap.Error(tokenizerErr))
		}
	})
	return tokenizer, tokenizerErr
}

// CountTokens 切片的 token 数；编码表加载失败时按字符数估算
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	tk, err := getTokenizer()
	if err != nil {
		return estimateTokens(text)
	}
	return len(tk.Encode(text, nil, nil))
}

// estimateTokens 泰文和中文基本一字一 token，拉丁文约四字符一 token
func estimateTokens(text string) int {
	ascii, other := 0, 0
	for _, r := range text {
		if r < utf8.RuneSelf {
			ascii++
		} else {
			other++
		}
	}
	n := other + (ascii+3)/4
	if n == 0 {
		n = 1
	}
	return n
}
