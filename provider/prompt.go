package provider

import (
	"fmt"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
)

var languages = queryfarmer.DefaultLanguageSet()

// SystemPrompt is shared by the LLM providers.
const SystemPrompt = `# Role
You are a professional translator for agricultural advisory content.

# Rules
- Translate the user's text faithfully and naturally. Return only the translation.
- Tokens of the form __NAME_N__ (for example __PLACEHOLDER_0__, __URL_1__, __NUMBER_2__) are opaque markers.
  Copy every marker exactly once, unchanged, in the position that fits the translated sentence.
- Do NOT translate, split, reorder characters inside, or invent markers.
- Preserve line breaks and leading or trailing whitespace.
- Do NOT wrap the answer in quotes or Markdown code blocks.`

// UserPrompt builds the per-request instruction.
func UserPrompt(req Request) string {
	return fmt.Sprintf("Translate the following text from %s to %s:\n\n%s",
		languages.Name(req.SourceLang), languages.Name(req.TargetLang), req.Text)
}
