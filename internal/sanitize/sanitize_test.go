package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_StripsHTML(t *testing.T) {
	out := Message("hello <script>alert(1)</script> world")
	assert.Equal(t, "hello alert(1) world", out)
}

func TestMessage_EscapesEntities(t *testing.T) {
	out := Message("a & b")
	assert.Equal(t, "a &amp; b", out)
}

func TestMessage_CollapsesWhitespace(t *testing.T) {
	out := Message("too    many\t\tspaces")
	assert.Equal(t, "too many spaces", out)

	out = Message("line1\n\n\n\n\nline2")
	assert.Equal(t, "line1\n\nline2", out)
}

func TestMessage_StripsZeroWidth(t *testing.T) {
	out := Message("he\u200bllo\ufeff")
	assert.Equal(t, "hello", out)
}

func TestValidateMessage_EmptyAfterTrim(t *testing.T) {
	_, err := ValidateMessage("   <b></b>  ", 5000)
	require.Error(t, err)

	_, err = ValidateMessage("", 5000)
	require.Error(t, err)
}

func TestValidateMessage_TooLong(t *testing.T) {
	_, err := ValidateMessage(strings.Repeat("a", 5001), 5000)
	require.Error(t, err)

	out, err := ValidateMessage(strings.Repeat("a", 5000), 5000)
	require.NoError(t, err)
	assert.Len(t, out, 5000)
}

// The cap counts characters, not bytes; "ă" is two bytes but one character.
func TestValidateMessage_MultibyteLength(t *testing.T) {
	out, err := ValidateMessage(strings.Repeat("ă", 5000), 5000)
	require.NoError(t, err)
	assert.Equal(t, 5000, utf8.RuneCountInString(out))

	_, err = ValidateMessage(strings.Repeat("ă", 5001), 5000)
	require.Error(t, err)
}

func TestIsSpam(t *testing.T) {
	assert.True(t, IsSpam("message me on whatsapp: +40721234567"))
	assert.True(t, IsSpam("send to my bitcoin wallet now"))
	assert.True(t, IsSpam("buy buy buy buy buy buy buy buy buy buy"))
	assert.False(t, IsSpam("Bună! How was church on Sunday?"))
}

func TestValidateMessage_SpamRejected(t *testing.T) {
	_, err := ValidateMessage("make $500 per day from home", 5000)
	require.Error(t, err)
}
