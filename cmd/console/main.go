// Command console is a terminal chat client for the diligence API: it
// streams an analyst conversation, printing tokens as they arrive and
// workflow milestones as side notes.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dealdesk/diligence/internal/chatstream"
	"github.com/dealdesk/diligence/internal/core/domain"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "diligence API base URL")
	projectID := flag.String("project", "", "project id (required)")
	flag.Parse()

	if strings.TrimSpace(*projectID) == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := chatstream.NewSession(*baseURL, *projectID, http.DefaultClient, chatstream.Callbacks{
		OnToken: func(token string) {
			fmt.Print(token)
		},
		OnPhaseChange: func(phase string) {
			fmt.Printf("\n-- phase: %s --\n", phase)
		},
		OnWorkflowProgress: func(progress domain.WorkflowProgress) {
			fmt.Printf("\n-- stage: %s (completed: %s) --\n",
				progress.CurrentStage, strings.Join(progress.CompletedStages, ", "))
		},
		OnOutline: func(outline domain.Outline) {
			fmt.Printf("\n-- outline: %d sections --\n", len(outline.Sections))
			for _, section := range outline.Sections {
				fmt.Printf("   %d. %s\n", section.Position, section.Title)
			}
		},
		OnSectionStarted: func(section string) {
			fmt.Printf("\n-- drafting section: %s --\n", section)
		},
		OnSlideUpdate: func(slide json.RawMessage) {
			fmt.Printf("\n-- slide updated (%d bytes) --\n", len(slide))
		},
		OnDone: func(conversationID string) {
			fmt.Printf("\n[conversation %s]\n", conversationID)
		},
	})

	go func() {
		<-ctx.Done()
		session.Cancel()
	}()

	fmt.Println("diligence console. Type a message, Ctrl+D to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if err := send(ctx, session, scanner.Text()); err != nil {
			log.Printf("send failed: %v", err)
		}
		if ctx.Err() != nil {
			break
		}
	}
}

func send(ctx context.Context, session *chatstream.Session, message string) error {
	if err := session.Send(ctx, message); err != nil {
		return err
	}
	fmt.Println()
	if err := session.Snapshot().Err; err != nil {
		return err
	}
	return nil
}
