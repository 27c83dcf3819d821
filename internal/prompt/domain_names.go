package prompt

import (
	"fmt"
	"strings"
)

// DomainNameSystemInstruction frames every name-list request.
const DomainNameSystemInstruction = "You are an expert domain name generator. " +
	"Your task is to generate creative, brandable, and short domain name ideas based on a user-provided description. " +
	"The domain names must not include TLDs like .com. You must only provide the root domain name. " +
	"Ensure names are single words or very short phrases suitable for a URL. " +
	"You must always respond in the requested JSON format, even if the user's description is very short or just a single word."

// AlternativesSystemInstruction frames requests for replacements of a taken name.
const AlternativesSystemInstruction = "You are an expert domain name generator. " +
	"When a domain name is taken, you provide %d creative, brandable, and clever alternatives. " +
	"The alternatives should be short, memorable, and related to the original idea. " +
	"Do not include TLDs. You must always respond in the requested JSON format."

// DomainNamePromptVars holds variables for the name-list prompt.
type DomainNamePromptVars struct {
	Description   string
	Count         int
	ExistingNames []string
}

// BuildDomainNamePrompt asks for Count fresh ideas, excluding ExistingNames.
func BuildDomainNamePrompt(vars DomainNamePromptVars) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a list of %d creative domain name ideas for: %q.", vars.Count, vars.Description)
	if len(vars.ExistingNames) > 0 {
		fmt.Fprintf(&b, " Provide completely new ideas that are not on this list: %s.", strings.Join(vars.ExistingNames, ", "))
	}
	b.WriteString(` Respond as JSON: {"domains": ["name1", "name2"]}.`)
	return b.String()
}

// BuildAlternativesPrompt asks for replacements of a taken name.
func BuildAlternativesPrompt(name string) string {
	return fmt.Sprintf(`The domain name %q is taken. Generate alternatives. Respond as JSON: {"domains": ["name1", "name2"]}.`, name)
}

// BuildAlternativesSystemInstruction fills the alternative count in.
func BuildAlternativesSystemInstruction(count int) string {
	return fmt.Sprintf(AlternativesSystemInstruction, count)
}
