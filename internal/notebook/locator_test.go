package notebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocatorXPath(t *testing.T) {
	tests := []struct {
		name string
		loc  Locator
		want string
	}{
		{"text", Text("button", "Add source"), `(//button[contains(translate(normalize-space(.), "ABCDEFGHIJKLMNOPQRSTUVWXYZ", "abcdefghijklmnopqrstuvwxyz"), "add source")])[1]`},
		{"any text", AnyText("복사된 텍스트"), `(//*[text()[contains(translate(normalize-space(.), "ABCDEFGHIJKLMNOPQRSTUVWXYZ", "abcdefghijklmnopqrstuvwxyz"), "복사된 텍스트")]])[1]`},
		{"attr", Attr("", "contenteditable", "true"), `(//*[@contenteditable="true"])[1]`},
		{"attr contains", AttrContains("textarea", "placeholder", "질문"), `(//textarea[contains(@placeholder, "질문")])[1]`},
		{"class", Class("div", "chat-message"), `(//div[contains(concat(' ', normalize-space(@class), ' '), " chat-message ")])[1]`},
		{"tag last", Tag("textarea").Last(), `(//textarea)[last()]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.XPath())
		})
	}
}

func TestTextLocatorsIgnoreASCIICase(t *testing.T) {
	assert.Equal(t, Text("button", "add source").XPath(), Text("button", "Add Source").XPath())
	assert.Equal(t, AnyText("copied text").XPath(), AnyText("COPIED Text").XPath())
	assert.Contains(t, AnyText("Ärger").XPath(), `"Ärger"`, "non-ASCII letters are left alone")
	assert.Equal(t, `button:text("Add Source")`, Text("button", "Add Source").String())
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, `"plain"`, xpathLiteral("plain"))
	assert.Equal(t, `'say "hi"'`, xpathLiteral(`say "hi"`))
	assert.Equal(t, `"it's"`, xpathLiteral("it's"))
	assert.Equal(t, `concat("it's ", '"', "x", '"', "")`, xpathLiteral(`it's "x"`))
}

func TestLocatorLastDoesNotMutate(t *testing.T) {
	base := Tag("textarea")
	last := base.Last()
	assert.False(t, base.PickLast)
	assert.True(t, last.PickLast)
	assert.Equal(t, "textarea:last", last.String())
}

func TestDefaultIntentsAreBilingual(t *testing.T) {
	intents := DefaultIntents()
	assert.NoError(t, intents.Validate())

	for _, intent := range intents.All() {
		assert.NotEmpty(t, intent.Candidates, intent.Name)
	}
	for _, loc := range intents.PromptInput.Candidates {
		assert.True(t, loc.PickLast, "prompt input candidates pick the newest match: %s", loc)
	}

	broken := intents
	broken.SubmitSource.Candidates = nil
	assert.Error(t, broken.Validate())
}
