/*
main.go - HR assistant entry point

PURPOSE:
  Starts an interactive chat with the PTO assistant against a running
  server. The Gemini API key is read from the environment by the genai
  client (GEMINI_API_KEY or GOOGLE_API_KEY).

COMMAND-LINE FLAGS:
  -api     Base URL of the PTO tracker server (overrides PTO_API_BASE_URL)
  -model   Gemini model name (overrides PTO_AGENT_MODEL)

  Remaining arguments are sent as the first question, e.g.
  ./agent "how many hours do I have left?"

SEE ALSO:
  - agent/assistant.go: Chat session and REPL
  - cmd/server/main.go: The server this talks to
*/
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/warp/pto-tracker/agent"
	"github.com/warp/pto-tracker/config"
)

func main() {
	log := logrus.StandardLogger()

	cfg := config.Load()
	apiURL := flag.String("api", cfg.APIBaseURL, "PTO tracker base URL")
	model := flag.String("model", cfg.GeminiModel, "Gemini model name")
	flag.Parse()

	ctx := context.Background()

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize Gemini client")
	}

	assistant := agent.NewAssistant(*model, agent.NewClient(*apiURL))

	var prompts []string
	if flag.NArg() > 0 {
		prompts = append(prompts, strings.Join(flag.Args(), " "))
	}

	if err := assistant.Run(ctx, client, os.Stdout, os.Stdin, prompts...); err != nil {
		log.WithError(err).Fatal("assistant failed")
	}
}
