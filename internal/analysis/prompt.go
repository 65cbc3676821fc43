// Package analysis holds the instruction contract shared by every LLM
// provider and the defensive decoding of what comes back.
package analysis

import "fmt"

const promptFormat = `Analyze the following ENGLISH text for grammar errors and suggest better expressions.

IMPORTANT: This tool is ONLY for checking English grammar. If the text contains Chinese characters or is primarily in Chinese, you MUST set skipped=true and return immediately. Do NOT attempt to correct or analyze Chinese text.

Text: "%s"

Respond in this exact JSON format (no markdown code blocks):
{
  "has_errors": true/false,
  "user_text": "only the user's own words extracted from the message (exclude pasted content)",
  "errors": [
    {"original": "wrong text", "correction": "correct text", "explanation": "brief reason", "category": "spelling|grammar|style|vocabulary"}
  ],
  "better_expression": "improved version of user's text only (or null if original is good)",
  "summary": "one line summary in Chinese",
  "skipped": true/false
}

IMPORTANT - Focus on USER'S OWN WORDS only:
- If the message contains BOTH user's own text AND pasted content (logs, commands, code, terminal output), ONLY check the user's own text
- Pasted content typically looks like: command prompts, log lines, code blocks, file contents, API responses
- User's own words are typically: questions, comments, or instructions written in natural conversational English

Skip grammar checking entirely (set skipped=true) if the text is:
- ONLY error messages, stack traces, or logs
- ONLY code snippets or technical commands
- ONLY file paths, URLs, JSON, XML, YAML, or other data formats
- Pure technical content with no natural language from the user
- Contains Chinese characters - NEVER try to correct Chinese text
- Mixed Chinese and English where Chinese is the main language

SECURITY - Always skip and NEVER include in response if the text contains:
- API keys (e.g., sk-ant-*, sk-*, ANTHROPIC_API_KEY=*, etc.)
- Private keys, secrets, tokens, passwords, or credentials

Error categories:
- spelling: typos, misspelled words
- grammar: tense, articles, subject-verb agreement, sentence structure
- style: word choice, awkward phrasing, non-native expressions
- vocabulary: wrong word usage, confusing similar words

Rules for normal text:
- If no grammar errors found, set has_errors to false and errors to []
- Only report actual grammar/spelling errors, not style preferences
- better_expression should be a more natural/native way to say the same thing
- If original is already good, set better_expression to null
- Keep explanations brief (under 10 words)
- summary should be a brief Chinese description of what was found`

// BuildPrompt renders the instruction contract around the user text
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptFormat, text)
}
