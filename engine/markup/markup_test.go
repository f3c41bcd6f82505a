package markup

import (
	"image/color"
	"testing"
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{R: 255, A: 255}

func TestPlainTextIdentity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.markup")
	defer teardown()
	//
	for _, raw := range []string{
		"",
		"नमस्ते दुनिया",
		"<color=#FF0000>not markup</color>",
		"a < b > c",
		"<unterminated",
	} {
		r := Strip(raw, false, DefaultStyle, 36)
		assert.Equal(t, raw, r.Text)
		require.Len(t, r.Styles, utf8.RuneCountInString(raw))
		for _, st := range r.Styles {
			assert.Equal(t, DefaultStyle, st)
		}
		assert.Empty(t, r.Links)
	}
}

func TestColorRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.markup")
	defer teardown()
	//
	r := Strip("ab<color=#FF0000>कि x</color>y", true, DefaultStyle, 36)
	assert.Equal(t, "abकि xy", r.Text)
	require.Len(t, r.Styles, 7)
	for i, st := range r.Styles {
		if i >= 2 && i < 6 {
			assert.Equal(t, red, st.Color, "char %d", i)
		} else {
			assert.Equal(t, DefaultStyle.Color, st.Color, "char %d", i)
		}
	}
}

func TestNestedStylesAndBaseEntry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.markup")
	defer teardown()
	//
	r := Strip("</color></size>a<size=200%><color=0f0>b</color>c</size>d", true, DefaultStyle, 36)
	assert.Equal(t, "abcd", r.Text)
	require.Len(t, r.Styles, 4)
	assert.Equal(t, DefaultStyle, r.Styles[0])
	assert.Equal(t, color.RGBA{G: 255, A: 255}, r.Styles[1].Color)
	assert.Equal(t, 2.0, r.Styles[1].Scale)
	assert.Equal(t, DefaultStyle.Color, r.Styles[2].Color)
	assert.Equal(t, 2.0, r.Styles[2].Scale)
	assert.Equal(t, DefaultStyle, r.Styles[3])
}

func TestSizes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.markup")
	defer teardown()
	//
	r := Strip("<size=18>a</size><size=0%>b</size><size=huge>c", true, DefaultStyle, 36)
	assert.Equal(t, "abc", r.Text)
	assert.Equal(t, 0.5, r.Styles[0].Scale)
	assert.Equal(t, MinScale, r.Styles[1].Scale)
	assert.Equal(t, 1.0, r.Styles[2].Scale)
}

func TestInvalidColorIsConsumed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.markup")
	defer teardown()
	//
	r := Strip("<color=#GG0000>x</color>", true, DefaultStyle, 36)
	assert.Equal(t, "x", r.Text)
	assert.Equal(t, DefaultStyle.Color, r.Styles[0].Color)
}

func TestLinks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.markup")
	defer teardown()
	//
	r := Strip("<link=x>abc</link>", true, DefaultStyle, 36)
	assert.Equal(t, "abc", r.Text)
	assert.Equal(t, []LinkSpan{{ID: "x", Start: 0, Length: 3}}, r.Links)
	//
	r = Strip(`go <a href="https://x.org/?a>b">here</A> or <link="y">there`, true, DefaultStyle, 36)
	assert.Equal(t, "go here or there", r.Text)
	assert.Equal(t, []LinkSpan{
		{ID: "https://x.org/?a>b", Start: 3, Length: 4},
		{ID: "y", Start: 11, Length: 5},
	}, r.Links)
	//
	r = Strip("<link=empty></link>x</link>", true, DefaultStyle, 36)
	assert.Equal(t, "x", r.Text)
	assert.Empty(t, r.Links)
}

func TestFixedCharacterTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.markup")
	defer teardown()
	//
	r := Strip("a<br>b<CR>c<nbsp>d<zwsp>e<zwj>f<shy>g<br/>", true, DefaultStyle, 36)
	assert.Equal(t, "a\nb\nc\u00A0d\u200Be\u200Df\u00ADg\n", r.Text)
	assert.Len(t, r.Styles, utf8.RuneCountInString(r.Text))
}

func TestNoparse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.markup")
	defer teardown()
	//
	r := Strip("<noparse><b>x</b></NOPARSE><i>y", true, DefaultStyle, 36)
	assert.Equal(t, "<b>x</b>y", r.Text)
	r = Strip("<noparse><b>", true, DefaultStyle, 36)
	assert.Equal(t, "<b>", r.Text)
}

func TestUnterminatedTag(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.markup")
	defer teardown()
	//
	r := Strip("ab<color=#f00 cd", true, DefaultStyle, 36)
	assert.Equal(t, "ab", r.Text)
	assert.Len(t, r.Styles, 2)
	r = Strip(`x<link='a>b`, true, DefaultStyle, 36)
	assert.Equal(t, "x", r.Text)
}

func TestParseColor(t *testing.T) {
	for v, expected := range map[string]color.RGBA{
		"#f00":      red,
		"f008":      {R: 255, A: 0x88},
		"#00FF00":   {G: 255, A: 255},
		"0000ff80":  {B: 255, A: 0x80},
		" #FFFFFF ": {R: 255, G: 255, B: 255, A: 255},
	} {
		c, ok := ParseColor(v)
		assert.True(t, ok, v)
		assert.Equal(t, expected, c, v)
	}
	for _, v := range []string{"", "#12", "#12345", "red", "#xyz"} {
		_, ok := ParseColor(v)
		assert.False(t, ok, v)
	}
}
