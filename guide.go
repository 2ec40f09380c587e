package godeck

import (
	"fmt"
	"strings"
)

// schemaText summarizes the deck JSON schema for an external author.
func schemaText() string {
	return `You will produce one valid JSON object in the **deck JSON** format for the godeck builder. Output ONLY JSON—no comments or prose.

Schema (summary):
{
  "meta": {
    "template_path": "path/to/template.pptx",   // required or provided externally
    "default_layout": "Title and Content",
    "layout_aliases": {"two column with header": "Two Content"},
    "fallback_layout": "Title and Content",
    "clear_existing": false,                    // drop the template's own slides first
    "variables": {"client": "Acme", "year": "2025"},   // {{var}} interpolation
    "defaults": { "list_type": "bullet", "fit": "shrink", "font_family": "Calibri", "title_size_pt": 40, "body_size_pt": 24 }
  },
  "slides": [
    {
      "layout": "Two Content",      // or alias; must exist in template
      "layout_id": "0:3",           // optional exact [master:layout] token
      "like_slide": 2,              // optional: reuse the layout of existing slide N
      "title": "Slide Title — {{client}} ({{year}})",
      "regions": {
        "left":  { "list_type": "bullet", "bullets": [BulletNode, ...] },
        "right": { "list_type": "number", "start_at": 1, "bullets": [BulletNode, ...] }
      },
      "notes": "Speaker notes.",
      "style": {"bold": false, "italic": false, "color": "#111111", "size_pt": 36},
      "background": {"color":"#FFFFFF"}
    }
  ]
}

BulletNode (recursive): { "text": "Point (supports {{variables}})", "style": {"bold":false,"italic":false,"color":"#111111","size_pt":24}, "children": [BulletNode, ...] } — a bare string is accepted as shorthand for {"text": ...}

Usage notes:
- Use ONLY real layout names from the provided template; if using synonyms, map via meta.layout_aliases.
- Nesting depth maps to paragraph level (0-based). Numbered lists use true PPT numbering; use start_at on the first top-level item.
- Omit an entire region (left/right) if unused. Styling and fit are hints; template styles may override.
- Provide concrete meta.variables so {{var}} placeholders resolve.`
}

// templateSpecificsText turns a template profile into human-readable
// guidance: size, which layouts take one or two regions, suggested
// aliases, and a ready-to-paste meta stub.
func templateSpecificsText(p *TemplateProfile) (string, error) {
	two := strings.Join(capNames(p.TwoBodyLayouts, 12), ", ")
	if two == "" {
		two = "(none found)"
	}
	one := strings.Join(capNames(p.SingleBodyLayouts, 12), ", ")
	if one == "" {
		one = "(none found)"
	}

	aliases, err := marshalJSON(p.SuggestedLayoutAliases, "")
	if err != nil {
		return "", err
	}
	defaults, err := marshalJSON(p.RecommendedDefaults, "")
	if err != nil {
		return "", err
	}
	stub, err := marshalJSON(p.MetaStub, "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Template specifics:
- Slide size (EMU): %d x %d  (~aspect %s)
- Two-body layouts (support left+right regions): %s
- Single-body layouts (left only): %s
- Suggested layout_aliases: %s
- Recommended defaults: %s

Ready-to-paste meta stub (fill template_path, adjust as needed):
`+"```json\n%s\n```"+`
Authoring guidance:
- If you need two columns, choose a name from the two-body list.
- If you need one column, use a name from the single-body list.
- If you prefer friendly names ('two column with header'), add them under meta.layout_aliases mapping to real template names.
`,
		p.SlideSize.WidthEMU, p.SlideSize.HeightEMU, p.SlideSize.Aspect,
		two, one, aliases, defaults, stub), nil
}

func capNames(names []string, max int) []string {
	if len(names) > max {
		return names[:max]
	}
	return names
}

// GenerateAuthoringGuide builds a ready-to-paste prompt explaining the
// deck JSON format and injecting the target template's inventory, so an
// external collaborator (typically a language model) emits compatible
// specs. An empty templatePath profiles the built-in template.
func GenerateAuthoringGuide(templatePath string) (string, error) {
	profile, err := BuildTemplateProfile(templatePath)
	if err != nil {
		return "", err
	}

	header := `ROLE: You generate PowerPoint content as **deck JSON** for the godeck builder.
TASK: Produce ONE valid JSON object conforming to the deck JSON schema.
IMPORTANT: Output ONLY JSON—no prose, comments, or Markdown—unless explicitly asked otherwise.
Output strict JSON only. Do not include Markdown escapes like \_, \&, \[ inside strings; write &, _, [, etc. directly. Do not wrap JSON in code fences.

`

	specifics, err := templateSpecificsText(profile)
	if err != nil {
		return "", err
	}

	contentGuidance := `

When asked to generate slide content, on each slide, aim for about 3-5 main bullets and between 0-2 sub bullets under each, typically with specific details, examples, or other supporting information. If no more detailed information is needed, then it's fine for there to be no sub-bullets; use them only when they add value to the slide and to the talk.
`

	return header + schemaText() + "\n\n" + specifics + contentGuidance, nil
}
