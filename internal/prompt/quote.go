package prompt

import "fmt"

const QuoteSystemInstruction = "You share short, real quotes about creativity, naming, and starting things. " +
	"Reply with the quote on the first line and the attribution on the second line, prefixed with an em dash. " +
	"No other text."

// FallbackQuote is shown whenever quote generation fails.
const FallbackQuote = "The beginning is the most important part of the work.\n— Plato"

// BuildQuotePrompt asks for one quote loosely related to the description.
func BuildQuotePrompt(description string) string {
	if description == "" {
		return "Share one inspiring quote for someone naming a new project."
	}
	return fmt.Sprintf("Share one inspiring quote for someone naming a project described as: %q.", description)
}
