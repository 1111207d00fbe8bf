package templates

// English prompts for the retrieval-augmented answer pipeline.
func init() {
	register("en", "rag", map[string]string{
		"system_prompt": "You are called Mini-Rag.\n" +
			"You are an assistant to generate a response for the user.\n" +
			"You have to generate response based on the documents provided.\n" +
			"Ignore the document that are not related to the query.",

		"document_prompt": "## Document No: $doc_num\n" +
			"### Content: $chunk_text",

		"footer_prompt": "Based only on the above document, please generate an answer for the user.\n" +
			"## Question:\n" +
			"$query\n" +
			"\n" +
			"## Answer:",
	})
}
