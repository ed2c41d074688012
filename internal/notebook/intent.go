package notebook

import "fmt"

// Intent is a named logical UI action with its candidate locators, ordered
// from most specific (exact localized labels) to most generic (structure).
type Intent struct {
	Name       string
	Candidates []Locator
}

// Intents is the full set of UI actions the protocols rely on.
type Intents struct {
	AddSource       Intent
	PasteTextSource Intent
	SourceName      Intent
	SourceBody      Intent
	SubmitSource    Intent
	PromptInput     Intent
	ResponseRegion  Intent
}

// DefaultIntents returns the locator catalog for the notebook UI in English and Korean.
func DefaultIntents() Intents {
	return Intents{
		AddSource: Intent{
			Name: "add-source",
			Candidates: []Locator{
				Text("button", "Add source"),
				Text("button", "소스 추가"),
				Attr("", "aria-label", "Add source"),
				Attr("", "aria-label", "소스 추가"),
				Text("button", "Add"),
				Class("button", "add-source"),
			},
		},
		PasteTextSource: Intent{
			Name: "paste-text-source",
			Candidates: []Locator{
				Text("button", "Copied text"),
				Text("button", "복사된 텍스트"),
				AnyText("Copied text"),
				AnyText("복사된 텍스트"),
				AnyText("Paste text"),
				AnyText("텍스트 붙여넣기"),
			},
		},
		SourceName: Intent{
			Name: "source-name",
			Candidates: []Locator{
				AttrContains("input", "placeholder", "Source name"),
				AttrContains("input", "placeholder", "소스 이름"),
				AttrContains("input", "placeholder", "name"),
				AttrContains("input", "placeholder", "이름"),
				AttrContains("input", "aria-label", "name"),
				AttrContains("input", "aria-label", "이름"),
			},
		},
		SourceBody: Intent{
			Name: "source-body",
			Candidates: []Locator{
				AttrContains("textarea", "placeholder", "Paste text"),
				AttrContains("textarea", "placeholder", "텍스트"),
				Tag("textarea"),
				Attr("", "contenteditable", "true"),
				Attr("div", "role", "textbox"),
				Class("", "text-input"),
			},
		},
		SubmitSource: Intent{
			Name: "submit-source",
			Candidates: []Locator{
				Text("button", "Insert"),
				Text("button", "삽입"),
				Text("button", "Add"),
				Text("button", "추가"),
				Text("button", "Submit"),
				Attr("button", "type", "submit"),
			},
		},
		PromptInput: Intent{
			Name: "prompt-input",
			Candidates: []Locator{
				AttrContains("textarea", "placeholder", "질문").Last(),
				AttrContains("textarea", "placeholder", "Ask").Last(),
				AttrContains("textarea", "placeholder", "question").Last(),
				Tag("textarea").Last(),
				Attr("", "contenteditable", "true").Last(),
				Attr("div", "role", "textbox").Last(),
			},
		},
		ResponseRegion: Intent{
			Name: "response-region",
			Candidates: []Locator{
				Class("", "response-content").Last(),
				Class("", "message-content").Last(),
				Attr("", "data-message-type", "response").Last(),
				Class("", "chat-message").Last(),
			},
		},
	}
}

// All lists every intent in protocol order.
func (in Intents) All() []Intent {
	return []Intent{
		in.AddSource, in.PasteTextSource, in.SourceName, in.SourceBody,
		in.SubmitSource, in.PromptInput, in.ResponseRegion,
	}
}

// Validate rejects unnamed intents and intents without candidates.
func (in Intents) Validate() error {
	for i, intent := range in.All() {
		if intent.Name == "" {
			return fmt.Errorf("intent #%d has no name", i)
		}
		if len(intent.Candidates) == 0 {
			return fmt.Errorf("intent %q has no candidate locators", intent.Name)
		}
	}
	return nil
}
