package graph

import "fmt"

const researcherPromptTemplate = `You are an intelligent expert. User asks: '%s'

Here is the retrieved context from multiple sources (PDFs, Audio, Images, Slides):
---------------------
%s
---------------------

Check the User's Intent and Apply the Correct Mode:
1. **Compare Mode**: If the user asks to compare A vs B, explicitly list Differences and Similarities.
2. **Formula Mode**: If identifying formulas, list them one per line as '[Doc Name]: Formula'.
3. **Adaptive Mode**:
   - If the user says 'Explain in detail', provide a multi-paragraph deep dive.
   - If the user says 'Summarize', provide bullet points.
4. **Concise Mode**: For general queries, be brief and focused. Read everything but report only key takeaways.
5. **Holistic Mode**: Synthesize facts into ONE narrative. Avoid repetitive lists.
6. **Attribution Mode**: If the user asks 'Who wrote...', 'Which author...', or 'Find source...', analyze content AND filenames to identify the creator linked to the specific concept.

Answer:`

const reviewerPromptTemplate = `You are a Senior Editor and Fact-Checker.

User Query: %s

Original Retrieved Context (Truth):
%s

Researcher's Draft Answer:
%s

Task:
1. Verify that the Draft is fully supported by the Context.
2. **HALLUCINATION CHECK**: If the draft contains claims NOT in the context, remove them or correct them.
3. If the Context is empty or irrelevant, admitting "I don't know" is better than hallucinating.
4. Refine the tone to be professional and clear.
5. **ATTRIBUTION CHECK**: Ensure authors/sources are correctly linked to their concepts.

Output the Final Polished Answer:`

const visualizerPromptTemplate = `Based on this context: %s

User Query: %s

Task:
1. If the user said "I don't understand", first provide a **Key Points** summary (bullet points) to clarify the concept.
2. Then, create a MERMAID.JS flowchart to visualize it. The first line inside the code block must be exactly "graph TD" or "graph LR".

Output Format:
[Key Points explanation if needed]

` + "```mermaid" + `
graph TD
...code...
` + "```"

func researcherPrompt(query, context string) string {
	return fmt.Sprintf(researcherPromptTemplate, query, context)
}

func reviewerPrompt(query, context, draft string) string {
	return fmt.Sprintf(reviewerPromptTemplate, query, context, draft)
}

func visualizerPrompt(context, instruction string) string {
	return fmt.Sprintf(visualizerPromptTemplate, context, instruction)
}
