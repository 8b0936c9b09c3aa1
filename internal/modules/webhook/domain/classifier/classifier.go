package classifier

import (
	"strings"

	"BotDesk/internal/modules/casebook/domain/entity"
)

// Classifier 文本意图分类，可替换为训练好的模型
type Classifier interface {
	Classify(text string) string
}

type rule struct {
	kind     string
	keywords []string
}

// 顺序即优先级
var defaultRules = []rule{
	{kind: entity.KindDeposit, keywords: []string{"ฝากไม่เข้า", "เครดิตไม่เข้า", "เติมไม่เข้า", "ฝากเงิน", "เติมเงิน", "ฝาก"}},
	{kind: entity.KindWithdraw, keywords: []string{"ถอนไม่ได้", "ถอนเงิน", "ถอนช้า", "ถอนไม่ออก", "ถอน"}},
	{kind: entity.KindKYC, keywords: []string{"ยืนยันตัวตน", "เอกสาร", "บัตรประชาชน", "kyc"}},
	{kind: entity.KindRegister, keywords: []string{"สมัครสมาชิก", "สมัคร", "เปิดยูส", "เปิด user", "เปิดยูสเซอร์"}},
}

type KeywordClassifier struct {
	rules []rule
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{rules: defaultRules}
}

func (k *KeywordClassifier) Classify(text string) string {
	t := strings.ToLower(text)
	for _, r := range k.rules {
		for _, kw := range r.keywords {
			if strings.Contains(t, kw) {
				return r.kind
			}
		}
	}
	return entity.KindOther
}
