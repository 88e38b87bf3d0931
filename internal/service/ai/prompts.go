package ai

import (
	"strings"

	"github.com/zhouzirui/moodi/backend/internal/model/expression"
)

// Prompt bodies are FString templates: literal braces must not appear outside placeholders.

const moderationSystemPrompt = `You are a message checker.
You have the entire conversation. The user may have multiple messages. Only classify the latest user message.
Definitions:
- "Inappropriate": Contains illegal content, sexual content involving minors, extremely violent content. Anything else is okay.
- "Gibberish": Nonsensical text that is not understandable in normal language.
Return one of the following words: 'appropriate', 'inappropriate', or 'gibberish'.`

const moderationUserPrompt = `Here is the entire conversation so far:
{transcript}
Below is the latest user message:
"{latest}"
Classify ONLY the latest user message above as either 'appropriate', 'inappropriate', or 'gibberish'.`

var expressionSystemPrompt = `You are an expression classifier. The list of possible expressions is:
` + strings.Join(expression.Names(), ", ") + `.
Analyze the LAST assistant message in the provided conversation and decide which one of these expressions best matches the vibe of the conversation at that point.
When the assistent is doing math or answers a specific question the expression should be: 'nerdiness'.`

const expressionUserPrompt = `Here is the conversation:
{transcript}
The last assistant message is:
"{latest}"
Which one expression from the list matches best? YOU CAN ONLY CHOOSE EXPRESSIONS FROM THE LIST! Respond with one exact expression word from the list, nothing else.`
