package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/dan1sh0/Baseera-AI/internal/chat"
	"github.com/dan1sh0/Baseera-AI/internal/llm"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the Quran and Hadith",
	Long: `Asks a question and prints an answer grounded in the ingested corpus.

With a question argument, answers once and exits. Without one, starts an
interactive session that keeps conversation history, so follow-ups like
"tell me more" work.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	session := uuid.NewString()

	if len(args) == 1 {
		return askOnce(ctx, eng, session, args[0])
	}
	return askLoop(ctx, eng, session)
}

func askOnce(ctx context.Context, eng *engine, session, question string) error {
	answer, err := eng.service.Ask(ctx, session, question)
	if err != nil {
		return askError(err)
	}
	fmt.Println(answer)
	return nil
}

func askLoop(ctx context.Context, eng *engine, session string) error {
	fmt.Println("Ask a question about the Quran or Hadith. Type \"exit\" to quit.")
	for {
		prompt := promptui.Prompt{
			Label: "Question",
		}
		question, err := prompt.Run()
		if err != nil {
			// Ctrl+C or Ctrl+D ends the session.
			return nil
		}

		question = strings.TrimSpace(question)
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		answer, err := eng.service.Ask(ctx, session, question)
		if err != nil {
			fmt.Printf("Error: %v\n\n", askError(err))
			if errors.Is(err, llm.ErrAuth) {
				return nil
			}
			continue
		}
		fmt.Printf("\n%s\n\n", answer)
	}
}

func askError(err error) error {
	switch {
	case errors.Is(err, chat.ErrValidation):
		return errors.New("question must not be empty")
	case errors.Is(err, llm.ErrAuth):
		return errors.New("authentication with the model provider failed, check your API key")
	default:
		return err
	}
}
