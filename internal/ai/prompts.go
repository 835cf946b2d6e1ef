package ai

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/HendryAvila/triz-master/internal/catalog"
)

const diagnoseSchema = `Reply with a single JSON object:
{"improvingParamId": <integer>, "worseningParamId": <integer>, "explanation": "<string>"}`

const draftSchema = `Reply with a single JSON object:
{"introduction": "<string>",
 "solutions": [{"title": "<string>", "description": "<string>", "principleApplied": "<string>", "feasibility": "<High|Medium|Low>"}],
 "nextSteps": ["<string>"]}`

var diagnoseTemplates = map[catalog.Locale]*template.Template{
	catalog.English: template.Must(template.New("diagnose-en").Parse(
		`As a TRIZ expert, analyze this problem: "{{.Problem}}"
You must identify the technical contradiction using exclusively the following 39 parameters: [{{.Context}}]
Required:
1. Select the ID of the Improving Parameter.
2. Select the ID of the Worsening Parameter.
3. Provide a logical engineering explanation in English.`)),
	catalog.Arabic: template.Must(template.New("diagnose-ar").Parse(
		`بصفتك خبيراً في منهجية TRIZ، قم بتحليل المشكلة التالية: "{{.Problem}}"
يجب عليك تحديد التناقض التقني باستخدام المعايير الـ 39 التالية حصراً: [{{.Context}}]
المطلوب:
1. اختيار ID المعيار الذي نريد تحسينه.
2. اختيار ID المعيار الذي سيتأثر سلباً.
3. شرح هندسي منطقي باللغة العربية.`)),
}

var draftTemplates = map[catalog.Locale]*template.Template{
	catalog.English: template.Must(template.New("draft-en").Parse(
		`You are a leading innovation engineer using TRIZ.
Problem: "{{.Problem}}"
Principles: [{{.Names}}]
Principles Guide:
{{.Context}}
Generate a professional innovation report in English including:
1. Analytical introduction. 2. 3 engineering solutions. 3. Action plan steps.`)),
	catalog.Arabic: template.Must(template.New("draft-ar").Parse(
		`أنت مهندس ابتكار رائد تستخدم منهجية TRIZ.
المشكلة: "{{.Problem}}"
المبادئ: [{{.Names}}]
دليل المبادئ:
{{.Context}}
المطلوب توليد تقرير حلول ابتكاري احترافي باللغة العربية يتضمن:
1. مقدمة تحليلية. 2. 3 حلول هندسية. 3. خطوات تنفيذية.`)),
}

// DiagnosePrompt renders the user message for a diagnosis request.
func DiagnosePrompt(req DiagnoseRequest) (string, error) {
	parts := make([]string, 0, len(req.Parameters))
	for _, p := range req.Parameters {
		parts = append(parts, fmt.Sprintf("%d: %s", p.ID, p.Name.Get(req.Locale)))
	}
	return render(diagnoseTemplates, req.Locale, map[string]string{
		"Problem": req.Problem,
		"Context": strings.Join(parts, ", "),
	}, diagnoseSchema)
}

// DraftPrompt renders the user message for a draft request.
func DraftPrompt(req DraftRequest) (string, error) {
	lines := make([]string, 0, len(req.Guide))
	for _, p := range req.Guide {
		lines = append(lines, fmt.Sprintf("%d: %s - %s", p.ID, p.Name.Get(req.Locale), p.Description.Get(req.Locale)))
	}
	return render(draftTemplates, req.Locale, map[string]string{
		"Problem": req.Problem,
		"Names":   strings.Join(req.PrincipleNames, ", "),
		"Context": strings.Join(lines, "\n"),
	}, draftSchema)
}

func render(set map[catalog.Locale]*template.Template, loc catalog.Locale, data map[string]string, schema string) (string, error) {
	tmpl, ok := set[loc]
	if !ok {
		tmpl = set[catalog.DefaultLocale]
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", tmpl.Name(), err)
	}
	b.WriteString("\n\n")
	b.WriteString(schema)
	return b.String(), nil
}
