/*
assistant.go - Interactive HR assistant over the PTO API

PURPOSE:
  A Gemini-backed chat assistant for PTO self-service. The model drives
  the conversation and reaches into the running server through the
  function library in tools.go; it never touches the store directly.

DESIGN:
  - One chat session per assistant, holding the conversation context
  - Function calls loop back into the chat until the model produces a
    final text answer
  - Responses are markdown, rendered for the terminal with glamour

SEE ALSO:
  - tools.go: The function library
  - cmd/agent/main.go: REPL entry point
*/
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"google.golang.org/genai"
)

const systemInstruction = `You are a helpful HR assistant specializing in PTO management.
Be concise. Ask for the employee ID if an action needs it and you do not have it yet.
Pay attention to the context of dates in user queries; use the tools to get the
current date when needed. Do not guess holiday dates, use the tools instead.
PTO is measured in hours; a full workday is 8 hours, and weekends and company
holidays inside a request cost nothing.`

// Assistant is a chat session bound to a tool library.
type Assistant struct {
	ModelName string
	Library   Library
	Config    *genai.GenerateContentConfig

	chat *genai.Chat
}

// NewAssistant builds the HR assistant over the given API client.
func NewAssistant(modelName string, apiClient *Client) *Assistant {
	tools := Tools(apiClient)
	return &Assistant{
		ModelName: modelName,
		Library:   NewLibrary(tools),
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclarations(tools)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		},
	}
}

// Start creates the underlying chat session.
func (a *Assistant) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, a.ModelName, a.Config, nil)
	if err != nil {
		return err
	}
	a.chat = chat
	return nil
}

// Ask sends parts to the model, resolving function calls until the
// model answers with text.
func (a *Assistant) Ask(ctx context.Context, parts ...*genai.Part) (string, error) {
	resp, err := a.chat.Send(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	part0 := resp.Candidates[0].Content.Parts[0]
	if part0.FunctionCall != nil {
		fresp := a.Library(ctx, part0.FunctionCall)
		return a.Ask(ctx, &genai.Part{FunctionResponse: fresp})
	}
	return part0.Text, nil
}

const prompt = "pto> "

// Run starts the interactive REPL. Optional prompts are consumed before
// reading from r, so a question can be passed on the command line.
func (a *Assistant) Run(ctx context.Context, client *genai.Client, w io.Writer, r io.Reader, prompts ...string) error {
	if a.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	fmt.Fprintln(w, "PTO assistant ready. Type 'bye' to exit.")
	reader := bufio.NewReader(r)

	for {
		fmt.Fprint(w, prompt)

		var input string
		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			fmt.Fprintln(w, input)
		} else {
			input, err = reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "bye" || input == "quit" || input == "exit" {
			return nil
		}

		answer, err := a.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}

		rendered, err := renderer.Render(answer)
		if err != nil {
			// Fall back to raw markdown
			fmt.Fprintln(w, answer)
			continue
		}
		fmt.Fprint(w, rendered)
	}
}
