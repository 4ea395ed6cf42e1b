package constant

// StructurePromptHeader opens every structure-generation prompt.
const StructurePromptHeader = `You are a document structure analyst. Read the document text below and propose its hierarchical outline (chapters, sections, subsections, paragraphs).

For every section you identify, return one JSON object with:
- "type": one of "chapter", "section", "subsection", "paragraph"
- "title": a short descriptive title
- "start_anchor": the EXACT first words of the section, copied verbatim from the text (at least 20 characters)
- "end_anchor": the EXACT last words of the section, copied verbatim from the text (at least 20 characters)
- "depth": 0 for top-level sections, 1 for their children, and so on
- "confidence": your confidence in this section, between 0 and 1
- optionally "start_offset" and "end_offset": character offsets into the given text, if you can determine them

Anchors must be copied character-for-character from the document text. Do not paraphrase, normalize quotes, or fix typos.`

// StructurePromptFooter closes every structure-generation prompt.
const StructurePromptFooter = `
Respond with ONLY a JSON array of section objects, no prose, no markdown fences.`
