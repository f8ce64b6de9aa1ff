// Package llm is the boundary to the hosted model. The pipeline treats it
// as an opaque producer of a chunked text stream; everything about prompts
// and model selection stays on this side of the interface.
package llm

import (
	"context"
	"fmt"
	"io"
	"iter"

	"google.golang.org/genai"
)

// DefaultModel is the default Gemini model used for parsing.
// 2.5-flash is fast and good at documents.
const DefaultModel = "gemini-2.5-flash"

// ChunkStream delivers the model output as ordered text fragments. Chunk
// boundaries are arbitrary and unrelated to record boundaries. Next returns
// io.EOF at the natural end of the stream.
type ChunkStream interface {
	Next(ctx context.Context) (string, error)
}

// StatementStreamer starts an extraction over a PDF and returns its chunk
// stream. Implementations must not buffer the whole response; the point is
// incremental delivery.
type StatementStreamer interface {
	StreamStatement(ctx context.Context, pdfBytes []byte) (ChunkStream, error)
}

// Gemini streams statement extractions through the Gen AI API.
//
// Client construction follows the usual env-var conventions:
//   - GEMINI_API_KEY for the Gemini Developer API, or
//   - GOOGLE_GENAI_USE_VERTEXAI=True with GOOGLE_CLOUD_PROJECT/LOCATION.
type Gemini struct {
	model string
}

// NewGemini creates a streamer for the given model name, falling back to
// DefaultModel when empty.
func NewGemini(model string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{model: model}
}

// StreamStatement implements StatementStreamer.
func (g *Gemini) StreamStatement(ctx context.Context, pdfBytes []byte) (ChunkStream, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractionPrompt()},
				{
					InlineData: &genai.Blob{
						MIMEType: "application/pdf",
						Data:     pdfBytes,
					},
				},
			},
		},
	}

	seq := client.Models.GenerateContentStream(ctx, g.model, contents, nil)
	next, stop := iter.Pull2(seq)
	return &geminiStream{next: next, stop: stop}, nil
}

// geminiStream adapts the push-style response iterator to the pull-style
// ChunkStream the pipeline consumes.
type geminiStream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
}

// Next implements ChunkStream.
func (s *geminiStream) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		s.stop()
		return "", err
	}

	resp, err, ok := s.next()
	if !ok {
		return "", io.EOF
	}
	if err != nil {
		s.stop()
		return "", fmt.Errorf("llm: stream recv: %w", err)
	}
	return resp.Text(), nil
}
