package classifier

import (
	"testing"

	"BotDesk/internal/modules/casebook/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()
	cases := []struct {
		text string
		want string
	}{
		{"ฝากเงินไม่เข้าครับ", entity.KindDeposit},
		{"เครดิตไม่เข้า", entity.KindDeposit},
		{"ถอนไม่ออกเลย", entity.KindWithdraw},
		{"ส่งเอกสารยังไง", entity.KindKYC},
		{"need KYC help", entity.KindKYC},
		{"อยากสมัครสมาชิก", entity.KindRegister},
		{"เปิด USER ใหม่", entity.KindRegister},
		{"สวัสดีครับ", entity.KindOther},
		{"", entity.KindOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Classify(tc.text), tc.text)
	}
}

func TestKeywordClassifier_Precedence(t *testing.T) {
	c := NewKeywordClassifier()
	// deposit 优先于 withdraw
	assert.Equal(t, entity.KindDeposit, c.Classify("ฝากแล้วถอนไม่ได้"))
	assert.Equal(t, entity.KindDeposit, c.Classify("ถอนไม่ได้ ฝากก็ไม่เข้า"))
	// withdraw 优先于 kyc
	assert.Equal(t, entity.KindWithdraw, c.Classify("ถอนเงินต้องยืนยันตัวตนไหม"))
	// kyc 优先于 register
	assert.Equal(t, entity.KindKYC, c.Classify("สมัครแล้วต้องส่งเอกสาร"))
}
