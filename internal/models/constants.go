package models

const (
	// Fields every store backend must return for a page entry.
	FieldFileName = "file_name"
	FieldPageNum  = "page_num"
	FieldContent  = "content"
	FieldImageURL = "image_url"
	FieldVector   = "embedding"

	// User-facing messages returned instead of an error.
	FallbackServiceMsg = "Pls try again later. Error in AWS service"
	FallbackGenericMsg = "Pls try again later."
)

var (
	// QuestionPromptTemplate wraps the retrieved context and the question.
	// Args: context, question.
	QuestionPromptTemplate = `%s

Answer this question: %s

- If it is required include the image url from context also.
- Answer to question should be brief unless user specifically ask for detailed answer.
- Final answer should be in Markdown text.
`
)
