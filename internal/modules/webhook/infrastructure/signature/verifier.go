package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

// VerifySignature base64(HMAC-SHA256(secret, raw)) 与请求头做常量时间比较
func VerifySignature(raw []byte, signature, secret string) bool {
	if secret == "" || signature == "" || len(raw) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(raw)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign 生成签名，测试和 dev 工具使用
func Sign(raw []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(raw)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type Verifier struct {
	skip bool
}

// NewVerifier skip=true 时跳过校验，仅限开发环境
func NewVerifier(skip bool) *Verifier {
	if skip {
		zlog.Warn("LINE signature verification is DISABLED (lineConfig.devSkipVerify)")
	}
	return &Verifier{skip: skip}
}

func (v *Verifier) Verify(raw []byte, signature, secret string) bool {
	if v.skip {
		zlog.Warn("skip LINE signature verification", zap.Int("body_len", len(raw)))
		return true
	}
	return VerifySignature(raw, signature, secret)
}
