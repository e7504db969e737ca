package mcpserver

// CatalogFormatContract describes the catalog file that defines every
// section and post of the blog.
const CatalogFormatContract = `# Devlog Catalog Format

The catalog is a single YAML file listing every section and its posts.
Post bodies live elsewhere and are fetched on demand via ` + "`" + `contentPath` + "`" + `.

## Structure

` + "```" + `yaml
sections:
  - key: project                 # REQUIRED – lower-case route segment (/project)
    title: Project               # OPTIONAL – derived from key when empty
    description: 프로젝트 관련    # OPTIONAL – shown on the section page
    posts:
      - id: 4                    # REQUIRED – integer, unique within the section
        category: Frontend       # REQUIRED – free-form label, case-sensitive
        projectTitle: FandomK    # OPTIONAL – project posts only
        title: 조건부 렌더링 성능 최적화   # REQUIRED
        date: "2024-11-03"       # REQUIRED – YYYY-MM-DD
        summary: 디바운스, 스로틀   # OPTIONAL
        tags: [React, 성능]        # OPTIONAL – display order preserved
        contentPath: /posts/project/DebounceAndThrottle.md   # REQUIRED
` + "```" + `

## Rules

1. **Identity** is (section, id). The same id may appear in different
   sections; it must not repeat inside one section.
2. **Dates** sort newest first. A date that does not parse sorts after
   every valid date and is reported in the server log.
3. **Categories and tags** are compared exactly: ` + "`" + `Git` + "`" + ` and ` + "`" + `git` + "`" + ` are
   different categories.
4. **contentPath** is resolved against the content directory, or against
   the content base URL when one is configured. Bodies are Markdown and
   may start with a YAML front matter block, which is stripped before
   rendering.
5. **Unknown fields** are rejected when the catalog is loaded.
6. The catalog is reloaded when the file changes; a file that fails to
   load leaves the previous catalog in place.
`
