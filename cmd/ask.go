package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/koopa0/secondbrain/internal/chat"
	"github.com/koopa0/secondbrain/internal/log"
)

// runAsk asks one question and prints the answer with its sources.
func runAsk(args []string, logger log.Logger) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: secondbrain ask <question>")
	}
	question := strings.Join(args, " ")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setup(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.orchestrator.Ask(ctx, chat.Request{Message: question})
	if err != nil {
		return fmt.Errorf("asking: %w", err)
	}

	fmt.Println(resp.Answer)
	if len(resp.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, s := range resp.Sources {
			fmt.Printf("  %s (score %.3f)\n", s.DocumentID, s.Score)
		}
	}
	return nil
}
