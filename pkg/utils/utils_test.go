package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAcceptLanguage(t *testing.T) {
	langs := ParseAcceptLanguage("en;q=0.8, zh-CN, fr;q=0.5")

	assert.Len(t, langs, 3)
	assert.Equal(t, "zh-CN", langs[0].Tag)
	assert.Equal(t, "en", langs[1].Tag)
	assert.Equal(t, "fr", langs[2].Tag)

	assert.Empty(t, ParseAcceptLanguage(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel...", Truncate("hello", 3))
	assert.Equal(t, "你好...", Truncate("你好世界", 2))
}

func TestGenUniqIDStr(t *testing.T) {
	SetupIDWorker(1)
	a := GenUniqIDStr()
	b := GenUniqIDStr()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
