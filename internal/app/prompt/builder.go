// Package prompt assembles the instruction text sent to the generation
// endpoint. Every function here is pure.
package prompt

import (
	"strings"

	"github.com/PabloGalante/translingua/internal/domain"
)

const translationInstructions = `Provide only the translation without any additional explanations or formatting.
Maintain the original tone, style, and context of the text.`

const travelGuideSections = `Please provide:
1. Best time to visit
2. Top attractions and activities
3. Recommended itinerary day by day
4. Local cuisine recommendations
5. Transportation tips
6. Accommodation suggestions
7. Cultural tips and etiquette
8. Packing recommendations

Format the response in a clear, organized manner with headings and bullet points.`

// Translation builds the prompt for translating text between two languages.
// A non-empty context adds a "Context:" line right after the instruction.
func Translation(text string, source, target domain.Language, context string) string {
	var b strings.Builder
	b.WriteString("Translate the following text from ")
	b.WriteString(source.Name)
	b.WriteString(" to ")
	b.WriteString(target.Name)
	b.WriteString(".\n")

	if context = strings.TrimSpace(context); context != "" {
		b.WriteString("Context: ")
		b.WriteString(context)
		b.WriteString("\n")
	}

	b.WriteString(translationInstructions)
	b.WriteString("\n\nText to translate: ")
	b.WriteString(text)
	b.WriteString("\n\nTranslation:")
	return b.String()
}

// TravelGuide builds the prompt for a travel guide. The budget line is
// left out entirely when no budget is given.
func TravelGuide(destination, duration, interests, budget string) string {
	var b strings.Builder
	b.WriteString("Create a comprehensive travel guide for ")
	b.WriteString(destination)
	b.WriteString(" for a ")
	b.WriteString(duration)
	b.WriteString(" trip.\n\nTraveler's interests: ")
	b.WriteString(interests)
	b.WriteString("\n")

	if budget = strings.TrimSpace(budget); budget != "" {
		b.WriteString("Budget: ")
		b.WriteString(budget)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(travelGuideSections)
	return b.String()
}

// Detection asks the model for the language of text, named in English.
func Detection(text string) string {
	return "Detect the language of the following text.\n" +
		`Respond with only the language name in English (e.g., "English", "Spanish", "French").` +
		"\n\nText: " + text + "\n\nLanguage:"
}

// Refinement asks the model to improve a translation using feedback.
func Refinement(original, current, feedback string) string {
	var b strings.Builder
	b.WriteString("Refine the following translation based on the provided feedback.\n\n")
	b.WriteString("Original text: ")
	b.WriteString(original)
	b.WriteString("\nCurrent translation: ")
	b.WriteString(current)
	b.WriteString("\nFeedback: ")
	b.WriteString(feedback)
	b.WriteString("\n\nProvide only the refined translation:")
	return b.String()
}
