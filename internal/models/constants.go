package models

const (
	// AnswerSentinel precedes the answer in the model completion.
	AnswerSentinel = "\nHelpful Answer: "

	DefaultChunkSize    = 200
	DefaultChunkOverlap = 0
	DefaultTopK         = 4

	HumanPrefix = "Human"
	AIPrefix    = "AI"
)

var (
	// QAPromptTemplate is rendered with the context, history and question values.
	QAPromptTemplate = `Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

{{.context}}

{{.history}}Question: {{.question}}
Helpful Answer: `
)
