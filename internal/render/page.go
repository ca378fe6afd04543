package render

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"

	"surveyforge/internal/survey"
)

const pageStyle = `body{font-family:system-ui,sans-serif;max-width:960px;margin:2rem auto;color:#1f2328}
section{border-top:1px solid #d0d7de;padding:1rem 0}
.q{margin:0 0 1rem 0}.num{font-weight:600;margin-right:.5rem}
.meta{color:#57606a;font-size:.85rem}.note{color:#9a6700;font-size:.85rem}
.score{font-weight:600}table{border-collapse:collapse}td,th{border:1px solid #d0d7de;padding:.25rem .5rem}`

// Page renders spec as a standalone HTML preview.
func Page(spec UISpec) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw("<!doctype html><html><head><meta charset=\"utf-8\"><title>Survey preview</title><style>")
		p.raw(pageStyle)
		p.raw("</style></head><body>")
		p.tag("h1", "Survey preview: "+survey.Text(spec.StudyType))
		for _, b := range spec.Blocks {
			if err := ctx.Err(); err != nil {
				return err
			}
			p.block(b)
		}
		p.raw("</body></html>")
		return p.err
	})
}

// RenderHTML renders the preview into a string.
func RenderHTML(ctx context.Context, spec UISpec) (string, error) {
	var builder strings.Builder
	if err := Page(spec).Render(ctx, &builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}

type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *pageWriter) tag(name, text string) {
	p.raw("<" + name + ">" + templ.EscapeString(text) + "</" + name + ">")
}

func (p *pageWriter) classed(name, class, text string) {
	p.raw(fmt.Sprintf("<%s class=%q>%s</%s>", name, class, templ.EscapeString(text), name))
}

func (p *pageWriter) list(items []string) {
	if len(items) == 0 {
		return
	}
	p.raw("<ul>")
	for _, item := range items {
		p.tag("li", item)
	}
	p.raw("</ul>")
}

func (p *pageWriter) block(b Block) {
	p.raw("<section>")
	p.tag("h2", b.Title)
	if b.Purpose != "" {
		p.classed("p", "meta", b.Purpose)
	}
	if text := survey.Text(b.Description); text != "" {
		p.tag("p", text)
	}
	switch b.BlockType {
	case BlockStudyHeader:
		p.header(b)
	case BlockArtefacts:
		for _, a := range b.Artefacts {
			p.artefact(a)
		}
	case BlockConfigurationSummary:
		p.raw("<table><tr><th>Question</th><th>Artefact</th><th>Configurations</th><th>Attributes</th></tr>")
		for _, row := range b.Summary {
			p.raw("<tr>")
			p.tag("td", row.QuestionID)
			p.tag("td", row.DisplaysArtefact)
			p.tag("td", fmt.Sprint(row.Configurations))
			p.tag("td", fmt.Sprint(row.AttributesPerConfiguration))
			p.raw("</tr>")
		}
		p.raw("</table>")
	case BlockArtefactAssignments:
		for _, a := range b.Assignments {
			p.tag("p", fmt.Sprintf("%s (%s): %s", a.ID, a.Method, strings.Join(a.Artefacts, ", ")))
		}
	case BlockQuotaSummary:
		for _, q := range b.Quotas {
			p.tag("p", fmt.Sprintf("%s [%s] via %s", q.Attribute, q.Type, q.LinkedQuestion))
		}
	case BlockSection, BlockSubsection:
		for _, q := range b.Questions {
			p.question(q)
		}
	case BlockAppendix:
		for _, rule := range survey.Objects(b.RoutingRules) {
			p.tag("p", fmt.Sprintf("%s: if %s then %s",
				survey.Str(rule, "rule_id"), survey.Str(rule, "condition"), survey.Str(rule, "action")))
		}
		p.list(survey.Strings(b.Items))
	default:
		p.fields(b.Fields)
	}
	p.raw("</section>")
}

func (p *pageWriter) header(b Block) {
	if items, ok := b.Items.([]HeaderItem); ok {
		for _, item := range items {
			if item.Value != nil {
				p.tag("p", item.Label+": "+survey.Text(item.Value))
			}
		}
	}
	if c := b.Completeness; c != nil {
		p.classed("p", "score", fmt.Sprintf("Completeness: %d%% (%s)", c.Score, c.Status))
		p.list(c.Missing)
	}
}

func (p *pageWriter) fields(fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for key, value := range fields {
		if survey.Truthy(value) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := fields[key]
		if items, ok := survey.AsArray(value); ok {
			p.tag("h3", key)
			p.list(survey.Strings(items))
			continue
		}
		p.tag("p", key+": "+survey.Text(value))
	}
}

func (p *pageWriter) artefact(a ArtefactView) {
	p.tag("h3", survey.Text(a.Title))
	if a.Parsed == nil {
		p.tag("p", survey.Text(a.Content))
		return
	}
	for _, cfg := range a.Parsed.Configurations {
		lines := make([]string, len(cfg.Order))
		for i, name := range cfg.Order {
			lines[i] = name + ": " + cfg.Attributes[name]
		}
		p.tag("h4", cfg.ConfigID)
		p.list(lines)
	}
}

func (p *pageWriter) question(q QuestionView) {
	p.raw(`<div class="q">`)
	p.raw("<p>")
	p.classed("span", "num", q.Number)
	p.raw(templ.EscapeString(q.QuestionText) + "</p>")
	p.classed("p", "meta", fmt.Sprintf("%s: %s (%s)", q.QuestionID, q.Meta.TypeLabel, q.Meta.AnswerFormat))
	labels := make([]string, len(q.Options))
	for i, o := range q.Options {
		labels[i] = o.Code + ". " + o.Label
	}
	p.list(labels)
	if rows := survey.Strings(q.Rows); len(rows) > 0 {
		p.list(rows)
	}
	if q.DisplaysArtefact != nil {
		p.artefact(*q.DisplaysArtefact)
	}
	for _, text := range q.AnnotationText {
		p.classed("p", "note", text)
	}
	p.raw("</div>")
}
