package artefact

import "fmt"

// ComposePrompt builds the natural-language prompt for a text-only
// generation, embedding the project fields, the selected artefact category,
// explicit word-count targets, markdown formatting guidance, and a
// token-budget reminder derived from the model configuration.
func ComposePrompt(req *GenerationRequest, cfg *ModelConfig) string {
	prompt := fmt.Sprintf(`You are a dramatalurgical expert that creates diegetic artefacts for architectural projects.
Your task is to imagine and create a specific diegetic artefact within the category of '%s' that exists within the narrative world of this project.
First, decide on an appropriate specific artefact type within this category that would be meaningful for this project.

Project Information:
Description: %s
Location: %s
Date/Timeframe: %s
User Personas: %s
Key Themes: %s

Instructions:
1. Begin by briefly explaining (100-150 words) your choice of specific artefact within the %s category.
2. Add a brief summary (2-3 sentences) explaining how this artefact relates to the project's themes and context.
3. Pose 2-3 thought-provoking questions for the user to consider about the relationship between this artefact and the architecture project.
4. Finally, create the diegetic artefact itself (500-750 words) in the appropriate format and style using markdown syntax to ensure it is visibly distinct. Refer to %s for additional abductive thinking opportunities. Ensure content is not truncated by the target word count and token limit. Rewrite to avoid this if necessary.

Markdown Formatting Guidelines:
- Use proper heading hierarchy (# for main title, ## for sections, ### for subsections)
- Format emphasis appropriately (* for italic, ** for bold)
- Use proper list formatting (- for unordered lists, 1. for ordered lists)
- Include line breaks between paragraphs for readability
- Use horizontal rules (---) to separate major sections

IMPORTANT: Your entire response must fit within %d tokens.
Structure your response to ensure your artefact is complete and not cut off.
The most important parts should come first, and conclude with a proper ending.

Begin your response:`,
		req.Category,
		req.Fields.Description,
		req.Fields.Location,
		req.Fields.Date,
		req.Fields.Personas,
		req.Fields.Themes,
		req.Category,
		req.ClosingInstruction,
		cfg.MaxTokens,
	)

	// Leave headroom for the completion: remind the model of the safe limit.
	safeTokens := int(float64(cfg.MaxTokens) * 0.9)
	return prompt + fmt.Sprintf("\n\nYour response should be complete and no longer than approximately %d tokens.", safeTokens)
}

// ComposeVisionPrompt builds the text portion of a vision request. The
// image blocks themselves are assembled by the provider driver; this prompt
// instructs the model to ground the artefact in the attached visuals.
func ComposeVisionPrompt(req *GenerationRequest) string {
	return fmt.Sprintf(`Project Information:
Description: %s
Location: %s
Date/Timeframe: %s
User Personas: %s
Key Themes: %s

Artifact Category: %s

Instructions:
1. Analyze the visual materials I've shared - what spatial, material, and contextual information do they convey?
2. Explain (100-150 words) your choice of specific artefact within the %s category, informed by both visuals and text.
3. Summarize (2-3 sentences) how this artefact relates to the project's themes and visual context.
4. Pose 2-3 thought-provoking questions about the relationship between this artefact and the architecture project.
5. Create the diegetic artefact itself (500-750 words) using markdown. Reference specific elements from the visual materials. %s

The artifact should feel grounded in the actual visual context you've seen, not generic assumptions.`,
		req.Fields.Description,
		req.Fields.Location,
		req.Fields.Date,
		req.Fields.Personas,
		req.Fields.Themes,
		req.Category,
		req.Category,
		req.ClosingInstruction,
	)
}
