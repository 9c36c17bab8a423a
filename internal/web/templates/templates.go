// Package templates renders the HTML views of the web UI as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/csvtables/internal/core"
	"github.com/a-h/templ"
)

// Index renders the upload page with the registered shapes.
func Index(shapes []core.Shape) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<title>csvtables</title></head><body><main>`)
		b.WriteString(`<h1>Multi-table CSV</h1>`)
		b.WriteString(`<form method="post" action="/api/preview" enctype="multipart/form-data">`)
		b.WriteString(`<input type="file" name="file" accept=".csv,text/csv" required> `)
		b.WriteString(`<button type="submit">Preview tables</button></form>`)

		b.WriteString(`<h2>Record types</h2>`)
		if len(shapes) == 0 {
			b.WriteString(`<p>No record types registered.</p>`)
		} else {
			b.WriteString(`<ul class="shapes">`)
			for _, s := range shapes {
				fmt.Fprintf(&b, `<li><strong>%s</strong> <code>%s</code>: %s</li>`,
					templ.EscapeString(s.Label),
					templ.EscapeString(s.Key),
					templ.EscapeString(strings.Join(s.FieldNames(), ", ")),
				)
			}
			b.WriteString(`</ul>`)
		}

		b.WriteString(`</main></body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Preview renders every table in the set, header first.
func Preview(fileName string, tables core.TableSet) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		fmt.Fprintf(&b, `<section class="preview"><h2>%s</h2>`, templ.EscapeString(fileName))
		fmt.Fprintf(&b, `<p>%d tables, %d rows</p>`, len(tables), tables.TotalRows())

		for i, t := range tables {
			fmt.Fprintf(&b, `<h3>Table %d</h3><table data-index="%d"><thead>`, i, i)
			writeRow(&b, "th", t.Header)
			b.WriteString(`</thead><tbody>`)
			for _, row := range t.Rows {
				writeRow(&b, "td", row)
			}
			b.WriteString(`</tbody></table>`)
		}

		b.WriteString(`</section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeRow(b *strings.Builder, cell string, row core.Row) {
	b.WriteString("<tr>")
	for _, v := range row {
		fmt.Fprintf(b, "<%s>%s</%s>", cell, templ.EscapeString(v), cell)
	}
	b.WriteString("</tr>")
}

// ErrorAlert renders an error fragment for HTMX requests.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><p>%s</p><p>%s</p><small>Code: %s</small></div>`,
			templ.EscapeString(message),
			templ.EscapeString(action),
			templ.EscapeString(code),
		)
		return err
	})
}
