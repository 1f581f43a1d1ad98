package mcpserver

// DocumentFormatContract describes the canonical inventory markdown format
// that LLM consumers should follow when reading or editing the document.
const DocumentFormatContract = `# Inventory Document Format

The whole inventory lives in ONE markdown file. Headings are containers
(boxes, shelves, rooms); bullets are the items inside them.

## Structure

` + "```" + `markdown
# Intro
Free-form introduction, kept verbatim.

# Nummereringsregime
Explanation of the numbering scheme, kept verbatim.

# ID:Garasje Garasjen
Description of the garage.
* ID:A23 The winter box lives here

## ID:A23 A23 Vinterutstyr (tag:vinter,sport)
Description of the box.
* Langrennsski
* Skistaver (antall:2)
  * Reservetrinser
` + "```" + `

## Rules

1. **Container ids** come from an explicit ` + "`" + `ID:xxx` + "`" + ` tag on the heading, or
   are derived from the heading text (letters, digits, underscore, hyphen;
   spaces become hyphens).
2. **Inline metadata** is ` + "`" + `key:value` + "`" + `, optionally in parentheses:
   ` + "`" + `(antall:2)` + "`" + `, ` + "`" + `(tag:vinter,sport)` + "`" + `. Keys are
   lowercased; ` + "`" + `tag:` + "`" + ` values are comma-separated.
3. **Parent relations** use an explicit ` + "`" + `parent:id` + "`" + ` tag, heading
   nesting (a ` + "`" + `###` + "`" + ` under a ` + "`" + `##` + "`" + `), or a bullet like
   ` + "`" + `* ID:A23 ...` + "`" + ` listing a container inside another. Explicit tags win.
4. **Items** are ` + "`" + `* ` + "`" + ` bullets directly under a container heading.
   Two-space indented bullets (` + "`" + `  * ` + "`" + `) are sub-items of the bullet above.
5. **Photos** live in ` + "`" + `photos/<container-id>/` + "`" + ` on disk and are NOT
   referenced from the markdown; they are discovered automatically.
6. **Reserved sections** ` + "`" + `# Intro` + "`" + ` and ` + "`" + `# Nummereringsregime` + "`" + `
   are captured verbatim and never edited by tools.
7. **Encoding** is UTF-8. Headings and item text may use any language.
`
