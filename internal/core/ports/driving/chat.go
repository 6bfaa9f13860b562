package driving

import (
	"context"

	"github.com/docsage/docsage/internal/core/domain"
)

// ChatService answers questions over the indexed documents.
//
// Answer itself has no side effects: the caller decides whether the
// exchange becomes part of the transcript by calling Remember. This
// keeps a failed or abandoned exchange out of the conversation memory.
type ChatService interface {
	// Answer retrieves relevant chunks, assembles the prompt with the
	// current transcript, and returns the model's answer together with
	// the chunks it was shown.
	Answer(ctx context.Context, question string) (string, []domain.Chunk, error)

	// Remember appends a completed question/answer exchange to the
	// transcript.
	Remember(question, answer string)

	// History returns the transcript in order.
	History() []domain.ConversationTurn

	// ResetHistory clears the transcript.
	ResetHistory()
}
