package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/Kavirubc/ticket-dedup/internal/similarity"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

func printHeader(format string, args ...any) {
	headerColor.Printf(format+"\n", args...)
}

func printSuccess(format string, args ...any) {
	successColor.Printf(format+"\n", args...)
}

func printWarning(format string, args ...any) {
	warnColor.Printf(format+"\n", args...)
}

func printError(format string, args ...any) {
	errorColor.Fprintf(os.Stderr, format+"\n", args...)
}

func statusLabel(t *models.Ticket) string {
	if strings.EqualFold(t.Status, "closed") {
		return errorColor.Sprint("Closed")
	}
	return successColor.Sprint("Open")
}

func printTicket(i int, t *models.Ticket, origin string) {
	fmt.Printf("%d. %s - %s\n", i, t.Key, t.Title)
	fmt.Printf("   Status: %s | Created: %s", statusLabel(t), t.CreatedAt.Format("2006-01-02"))
	if origin != "" {
		fmt.Printf(" | Source: %s", origin)
	}
	fmt.Println()
	if t.URL != "" {
		fmt.Printf("   %s\n", t.URL)
	}
}

func printMatches(results []models.SimilarityResult) {
	if len(results) == 0 {
		fmt.Println("No similar tickets found")
		return
	}

	printHeader("Found %d similar tickets:", len(results))
	fmt.Println()
	for i, r := range results {
		fmt.Printf("%d. %s - %s\n", i+1, r.Key, r.Title)
		fmt.Printf("   Similarity: %s | %s\n", headerColor.Sprint(similarity.Percent(r.Score)), r.Reason)
		if r.ResolvedAt != nil {
			fmt.Printf("   Resolved: %s", r.ResolvedAt.Format("2006-01-02"))
		} else {
			fmt.Printf("   Status: %s", r.Status)
		}
		if r.ExternalRef != "" {
			fmt.Printf(" | PR: %s", r.ExternalRef)
		}
		fmt.Println()
		if r.URL != "" {
			fmt.Printf("   %s\n", r.URL)
		}
		fmt.Println()
	}
}
