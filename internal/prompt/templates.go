package prompt

// Variable names shared by the built-in templates and their callers.
const (
	VarContext      = "context"
	VarResponse     = "response"
	VarTask         = "task"
	VarModel        = "model"
	VarAverageScore = "average_score"
	VarExplanations = "explanations"
	VarQuestion     = "question"
)

// judgingTemplate grades against the task when one is given and falls back
// to generic clarity, format and depth criteria otherwise.
const judgingTemplate = `{{if .task}}Você deve avaliar a resposta de um modelo para a tarefa 1 demandada e fornecer uma pontuação de 0 a 10, junto com uma explicação para a pontuação.
Considere:

1. A aderência ao pedido no prompt original.
2. Os temas serem os mais relevantes.
3. A aderência ao formato solicitado. Seja em escrita e quantidade de tópicos.

Tarefa original:
{{.task}}
{{else}}Você deve avaliar a resposta de um modelo para uma tarefa específica e fornecer uma pontuação de 0 a 10, junto com uma explicação para a pontuação.
Considere:

1. A clareza da resposta.
2. A aderência ao formato solicitado.
3. A profundidade da análise.
{{end}}
Texto original:
{{.context}}

Resposta do Modelo:
{{.response}}

Qual é a pontuação (0 a 10) e a explicação? Forneça no formato:
{"score": <pontuação>, "explanation": "<explicação>"}
`

const assessmentTemplate = `Você deve fornecer uma avaliação geral para o modelo '{{.model}}' com base nos dados a seguir:

- Pontuação média: {{.average_score}}
- Explicações agregadas:
{{.explanations}}

Avalie os seguintes aspectos:
1. Os pontos mais fortes do modelo.
2. Os pontos mais fracos do modelo.
3. Recomendações para melhoria.
4. Um resumo geral da performance.

Forneça a resposta no seguinte formato:
{
    "strengths": ["<forte1>", "<forte2>", ...],
    "weaknesses": ["<fraqueza1>", "<fraqueza2>", ...],
    "recommendations": ["<recomendação1>", "<recomendação2>", ...],
    "summary": "<resumo>"
}
`

const validationTemplate = `Você deve avaliar se o seguinte texto está no formato solicitado. Responda apenas "Sim" ou "Não".
O texto deve ter:

1. A seção "Tarefa 1:" seguida por tópicos limitados a 10 itens, começando com "-".
2. A seção "Tarefa 2:" com uma resposta de uma palavra: "positivo" ou "negativo".

Texto para avaliação:
{{.response}}
`

const generationTemplate = `Você é um assistente para tarefas de resposta a perguntas. Use os seguintes trechos de contexto recuperado para responder à pergunta. Se não souber a resposta, diga que não sabe.

Pergunta: {{.question}}

Contexto: {{.context}}

Resposta:`

// DefaultQuestion is the generation task used when none is configured.
const DefaultQuestion = `Queria pedir para você realizar duas tarefas sequencialmente:

Tarefa 1) Apresentar os tópicos mais importantes desse texto. Limite máximo de 10 tópicos. Os tópicos devem ser de no máximo 5 palavras e devem ser assuntos, não o detalhamento do que foi falado. Liste os tópicos de em tópicos com '-'.
Tarefa 2) Avaliar pelas perguntas do público se o público teve uma percepção positiva do apresentado. A resposta deve ter 1 palavra: positivo ou negativo.

Para todas as respostas deve-se começar pelo texto: 'Tarefa x:' e usar tópicos usando '-'
Não deve-se usar *`

// DefaultCorrectiveHint is appended to retried prompts when corrective hints are enabled.
const DefaultCorrectiveHint = `

Sua resposta anterior não era um JSON válido no formato solicitado. Responda somente com o objeto JSON, sem texto adicional.`

// Defaults returns the built-in templates.
func Defaults() []Template {
	return []Template{
		{Kind: KindJudging, Text: judgingTemplate, Optional: []string{VarTask}},
		{Kind: KindAssessment, Text: assessmentTemplate},
		{Kind: KindValidation, Text: validationTemplate},
		{Kind: KindGeneration, Text: generationTemplate},
	}
}

// WithOverrides replaces built-in template text by kind. Optional
// placeholders of the built-in template are kept.
func WithOverrides(overrides map[Kind]string) []Template {
	templates := Defaults()
	for i, t := range templates {
		if text, ok := overrides[t.Kind]; ok && text != "" {
			templates[i].Text = text
		}
	}
	return templates
}
