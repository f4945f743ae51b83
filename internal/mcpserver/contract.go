package mcpserver

// PostFormatContract describes the Markdown post format that LLM consumers
// should follow when creating or editing posts.
const PostFormatContract = `# Post Format

Every post is one Markdown file at ` + "`<author>/<slug>.md`" + ` in the blog root.
` + "`<author>`" + ` is a key of authors.json. ` + "`<slug>`" + ` is the lower-case slug of the title.

## Structure

` + "```" + `markdown
---
title: Human readable title          # REQUIRED, longer than 3 characters
category: research                   # REQUIRED, a key of categories.json
co_authors: alice,bob                # OPTIONAL, comma separated author keys
publish_date: ""                     # filled in when the post is scheduled
image: media/cover.png               # cover image, relative to the post
imageAlt: Description of the cover
imageCaption: Caption under the cover
excerpt: One or two sentences shown in listings
---

Body text in Markdown.
` + "```" + `

## Rendering

- GitHub flavoured Markdown: tables, task lists, strikethrough, autolinks.
- Footnotes with ` + "`[^1]`" + `.
- Math: ` + "`$inline$`" + ` and ` + "`$$display$$`" + ` blocks, typeset with MathJax.
- Fenced code blocks are highlighted by language.
- Raw HTML passes through unchanged.
- Headings get an id derived from their text.

## Media

- Images live in the ` + "`media/`" + ` folder next to the post. Add them with the ` + "`add_media`" + ` tool.
- Reference them relatively: ` + "`![Diagram](media/diagram.png)`" + `.
- The preview rewrites every relative ` + "`src`" + ` to an absolute URL under the media root.
  Absolute URLs and data: URIs are left untouched.
`
