package chart

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"
)

var svgFuncs = template.FuncMap{
	"num": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	},
	"half": func(v float64) float64 { return v / 2 },
	"neg":  func(v float64) float64 { return -v },
	"dur": func(d time.Duration) string {
		return fmt.Sprintf("%dms", d.Milliseconds())
	},
}

const svgTemplate = `{{define "chart"}}<svg xmlns="http://www.w3.org/2000/svg" class="chart" width="{{num .Layout.Width}}" height="{{num .Layout.Height}}" viewBox="0 0 {{num .Layout.Width}} {{num .Layout.Height}}" data-selection="{{.Selection}}" data-generation="{{.Generation}}" font-family="sans-serif">
<g transform="translate({{num .Layout.Margin.Left}},{{num .Layout.Margin.Top}})">
{{- $f := .}}
{{- range .Bars}}
<rect class="bar {{.Key.Series}}" data-year="{{.Key.Year}}" x="{{num .Rect.X}}" y="{{num .Rect.Y}}" width="{{num .Rect.Width}}" height="{{num .Rect.Height}}" fill="{{.Fill}}">
{{- if and $f.Animate .Animated}}
<animate attributeName="x" from="{{num .From.X}}" to="{{num .Rect.X}}" dur="{{dur $f.Layout.Transition}}" fill="freeze"/>
<animate attributeName="y" from="{{num .From.Y}}" to="{{num .Rect.Y}}" dur="{{dur $f.Layout.Transition}}" fill="freeze"/>
<animate attributeName="width" from="{{num .From.Width}}" to="{{num .Rect.Width}}" dur="{{dur $f.Layout.Transition}}" fill="freeze"/>
<animate attributeName="height" from="{{num .From.Height}}" to="{{num .Rect.Height}}" dur="{{dur $f.Layout.Transition}}" fill="freeze"/>
{{- end}}
</rect>
{{- end}}
<g class="x-axis" transform="translate(0,{{num .Layout.InnerHeight}})" font-size="10" text-anchor="middle">
<path class="domain" stroke="currentColor" fill="none" d="M0.5,6V0.5H{{num .Layout.InnerWidth}}V6"/>
{{- range .XTicks}}
<g class="tick" data-year="{{.Year}}" transform="translate({{num .X}},0)">
{{- if and $f.Animate .Animated}}
<animateTransform attributeName="transform" type="translate" from="{{num .FromX}} 0" to="{{num .X}} 0" dur="{{dur $f.Layout.Transition}}" fill="freeze"/>
{{- end}}
<line stroke="currentColor" y2="6"/>
<text fill="currentColor" y="9" dy="0.71em">{{.Label}}</text>
</g>
{{- end}}
</g>
<g class="y-axis" font-size="10" text-anchor="end">
<path class="domain" stroke="currentColor" fill="none" d="M-6,{{num .Layout.InnerHeight}}H0.5V0.5H-6"/>
{{- range .YTicks}}
<g class="tick" transform="translate(0,{{num .Y}})">
<line stroke="currentColor" x2="-6"/>
<text fill="currentColor" x="-9" dy="0.32em">{{.Label}}</text>
</g>
{{- end}}
</g>
<text class="y-label" transform="rotate(-90)" y="{{num (neg .Layout.Margin.Left)}}" x="{{num (neg (half .Layout.InnerHeight))}}" dy="1em" text-anchor="middle">{{.Layout.YLabel}}</text>
<text class="x-label" x="{{num (half .Layout.InnerWidth)}}" y="{{num .XLabelY}}" text-anchor="middle">{{.Layout.XLabel}}</text>
<text class="title" x="{{num (half .Layout.InnerWidth)}}" y="{{num .TitleY}}" text-anchor="middle" font-size="22">{{.Layout.Title}}</text>
</g>
</svg>{{end}}`

var svgTmpl = template.Must(template.New("svg").Funcs(svgFuncs).Parse(svgTemplate))

// Animate reports whether the frame carries transition animations.
func (f Frame) Animate() bool {
	return f.Layout.Transition > 0
}

// TitleY is the baseline of the chart title, above the plot area.
func (f Frame) TitleY() float64 {
	return -(f.Layout.Margin.Top / 2) + 5.5
}

// XLabelY is the baseline of the horizontal axis label.
func (f Frame) XLabelY() float64 {
	return f.Layout.InnerHeight() + f.Layout.Margin.Top + 30
}

// WriteSVG writes the frame as a standalone SVG document.
func (f Frame) WriteSVG(w io.Writer) error {
	return svgTmpl.ExecuteTemplate(w, "chart", f)
}

// SVG returns the frame as markup safe to embed in an HTML page.
func (f Frame) SVG() (template.HTML, error) {
	var buf bytes.Buffer
	if err := f.WriteSVG(&buf); err != nil {
		return "", err
	}
	// The markup comes from svgTmpl, which escapes every interpolated value.
	return template.HTML(buf.String()), nil
}
