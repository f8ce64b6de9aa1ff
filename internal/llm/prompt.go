package llm

import "strings"

// extractionPrompt builds the instruction block sent with every statement.
// The model is asked for NDJSON rather than one big array so records become
// parseable the moment their line is complete, without waiting for the end
// of the response.
func extractionPrompt() string {
	var b strings.Builder

	b.WriteString("You are a financial statement parser for PDF bank statements.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Parse ALL transactions in the attached statement.\n")
	b.WriteString("- Output newline-delimited JSON (NDJSON): exactly ONE minified JSON object per line.\n")
	b.WriteString("- Output records in the order they appear in the statement.\n\n")

	b.WriteString("Each object must have exactly these fields:\n")
	b.WriteString("- \"date\": string, ISO format \"YYYY-MM-DD\"\n")
	b.WriteString("- \"description\": string\n")
	b.WriteString("- \"amount\": number, always positive (the magnitude only)\n")
	b.WriteString("- \"type\": string, \"debit\" for money OUT, \"credit\" for money IN\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- If the statement has separate \"paid out\" / \"paid in\" columns, set \"type\" accordingly and keep \"amount\" positive.\n")
	b.WriteString("- Never emit a sign on \"amount\"; direction is carried by \"type\" only.\n")
	b.WriteString("- Do not include any other fields, headers, totals or prose.\n\n")

	b.WriteString("Return ONLY the NDJSON lines.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Do NOT use ```json or any Markdown.\n")
	b.WriteString("Every line must begin with \"{\" and end with \"}\".\n")

	return b.String()
}
