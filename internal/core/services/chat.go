package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/core/ports/driving"
	"github.com/docsage/docsage/internal/logger"
)

// Ensure Chat implements the interface.
var _ driving.ChatService = (*Chat)(nil)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 15

const answerPromptTemplate = `You are an assistant that answers questions about a set of documents.

Rules:
- Answer using only the information in the context below.
- If the context does not contain the answer, say so plainly instead of guessing.
- When you use information from a document, name the document it came from.

CONTEXT:
%s

%sQUESTION: %s

ANSWER:`

// Chat answers questions over the indexed documents, keeping the
// conversation transcript between questions.
type Chat struct {
	session *IndexSession
	llm     driven.LLMService
	memory  *ConversationMemory
	topK    int
	opts    driven.GenerateOptions
}

// NewChat creates the chat service. llm may be nil; Answer then fails
// with domain.ErrLLMUnavailable while retrieval-free calls still work.
func NewChat(session *IndexSession, llm driven.LLMService, memory *ConversationMemory, topK int, opts driven.GenerateOptions) *Chat {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Chat{session: session, llm: llm, memory: memory, topK: topK, opts: opts}
}

// Answer retrieves context for the question and asks the model. The
// exchange is not recorded; call Remember once the answer is accepted.
func (c *Chat) Answer(ctx context.Context, question string) (string, []domain.Chunk, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", nil, fmt.Errorf("empty question: %w", domain.ErrInvalidInput)
	}
	if c.llm == nil {
		return "", nil, fmt.Errorf("chat model not configured: %w", domain.ErrLLMUnavailable)
	}

	chunks, err := c.session.Search(ctx, question, c.topK)
	if err != nil {
		return "", nil, fmt.Errorf("retrieving context: %w", err)
	}
	logger.Debug("retrieved %d chunks for question", len(chunks))

	prompt := c.buildPrompt(question, chunks)
	answer, err := c.llm.Generate(ctx, prompt, c.opts)
	if err != nil {
		return "", nil, fmt.Errorf("generating answer: %w", err)
	}
	return answer, chunks, nil
}

// buildPrompt assembles the context blocks, the transcript and the
// question into the final prompt.
func (c *Chat) buildPrompt(question string, chunks []domain.Chunk) string {
	return fmt.Sprintf(answerPromptTemplate,
		formatContext(chunks), formatTranscript(c.memory.Turns()), question)
}

// formatContext renders each chunk as a block headed by its source
// document, so the model can cite where an answer came from.
func formatContext(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return "(no documents indexed)"
	}
	var b strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "DOCUMENT [%s]:\n%s", chunk.Source, chunk.Content)
	}
	return b.String()
}

// formatTranscript renders prior turns, empty string for a fresh
// conversation so the prompt stays compact.
func formatTranscript(turns []domain.ConversationTurn) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("CONVERSATION SO FAR:\n")
	for _, turn := range turns {
		label := "User"
		if turn.Role == domain.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, turn.Content)
	}
	b.WriteString("\n")
	return b.String()
}

// Remember appends a completed exchange to the transcript.
func (c *Chat) Remember(question, answer string) {
	c.memory.Append(domain.RoleUser, question)
	c.memory.Append(domain.RoleAssistant, answer)
}

// History returns the transcript in order.
func (c *Chat) History() []domain.ConversationTurn {
	return c.memory.Turns()
}

// ResetHistory clears the transcript.
func (c *Chat) ResetHistory() {
	c.memory.Reset()
}
