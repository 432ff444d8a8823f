package provider

import (
	"fmt"
	"strings"
)

// SectionSeparator joins section summaries in a StageReduce request.
const SectionSeparator = "\n\n--- SECTION BREAK ---\n\n"

var languageNames = map[string]string{
	"en": "English",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"pl": "Polish",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"vi": "Vietnamese",
}

// LanguageName maps a language code to the name used in prompts.
// Unknown codes are passed through unchanged; empty means English.
func LanguageName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "English"
	}
	if name, ok := languageNames[code]; ok {
		return name
	}
	if i := strings.IndexAny(code, "-_"); i > 0 {
		if name, ok := languageNames[code[:i]]; ok {
			return name
		}
	}
	return code
}

const summaryStructure = `Structure:
🎯 TITLE: Create a descriptive title
📝 OVERVIEW: 2-3 sentences brief context
🔑 KEY POINTS: Main arguments with examples
💡 MAIN TAKEAWAYS: 3-5 practical insights
🔄 CONTEXT: Broader context discussion`

const fullPrompt = `Create a detailed summary in %s.

%s

Text to summarize:
%s`

const sectionPrompt = `This is section %d of %d of a longer video transcript.
Summarize this section in %s. Preserve all important information: arguments, names, numbers and examples.
Do not add a title or an introduction.

Section text:
%s`

const reducePrompt = `Below are summaries of consecutive sections of one video transcript, in order, separated by "--- SECTION BREAK ---".
Merge them into one coherent summary in %s. Remove repetition between sections but keep every important point.

%s

Section summaries:
%s`

// Prompt renders the instruction text for req.
func Prompt(req Request) string {
	lang := LanguageName(req.Language)
	switch req.Stage {
	case StageSection:
		return fmt.Sprintf(sectionPrompt, req.Section, req.Sections, lang, req.Text)
	case StageReduce:
		return fmt.Sprintf(reducePrompt, lang, summaryStructure, req.Text)
	default:
		return fmt.Sprintf(fullPrompt, lang, summaryStructure, req.Text)
	}
}
