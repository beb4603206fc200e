package translation

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageName returns the English name of a BCP 47 tag, e.g. "Arabic" for
// "ar". Unknown tags are returned unchanged.
func LanguageName(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	if name := display.English.Tags().Name(t); name != "" {
		return name
	}
	return tag
}

// SystemPrompt is the fixed instruction given to LLM providers.
func SystemPrompt(targetLang string) string {
	name := LanguageName(targetLang)
	return fmt.Sprintf(`You are an expert translator. Translate the text you are given into %s.
Provide an accurate and natural-sounding translation that preserves the meaning and tone of the original.

Follow these rules:
1. Keep every formatting marker exactly as written: template placeholders such as {{name}}, {0}, ${value} or %%s, numbers, inline HTML or markdown, line breaks and punctuation.
2. Keep proper nouns, brand names and technical terms in their original form.
3. For idioms, use an equivalent expression in %s; if none exists, translate the meaning.
4. If the text contains a proper noun you are unsure about, do not guess: keep it as written and explain the doubt in the note.
5. If the text is already in %s, return it unchanged.

Reply with a single JSON object and nothing else:
{"translation": "<the translated text>", "note": "<a short note, or an empty string>"}`, name, name, name)
}

// UserPrompt wraps the text to translate.
func UserPrompt(text string) string {
	return "Here is the content to be translated:\n\n" + text
}
