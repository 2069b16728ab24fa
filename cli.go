package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/skillbuilder/internal/chatbot"
	"github.com/example/skillbuilder/internal/excel"
	"github.com/spf13/cobra"
)

var chatNoDelay bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the Skill Builder assistant in the terminal",
	RunE:  runChat,
}

var (
	reportUserID string
	reportOutDir string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a user's progress report workbook",
	RunE:  runReport,
}

var importSheet string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import catalog modules from an .xlsx or .csv file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	chatCmd.Flags().BoolVar(&chatNoDelay, "no-delay", false, "Reply without the simulated typing delay")

	reportCmd.Flags().StringVarP(&reportUserID, "user", "u", "user-1", "User id")
	reportCmd.Flags().StringVarP(&reportOutDir, "out", "o", ".", "Output directory")

	importCmd.Flags().StringVar(&importSheet, "sheet", "", "Worksheet to read (default: first sheet)")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	responder := chatbot.NewResponder()
	conv := chatbot.NewConversation(responder)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, chatbot.WelcomeMessage)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		text := scanner.Text()
		if text == "exit" || text == "quit" {
			return nil
		}

		if !chatNoDelay {
			if err := chatbot.Pause(ctx, responder.TypingDelay(cfg.Chat.MinDelay, cfg.Chat.MaxDelay)); err != nil {
				return nil
			}
		}
		reply, err := conv.Send(text)
		if err != nil {
			continue
		}
		fmt.Fprintln(out, reply.Content)
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	user, ok := a.auth.User(reportUserID)
	if !ok {
		return fmt.Errorf("unknown user %q", reportUserID)
	}
	content, name, err := a.reporter.Generate(ctx, *user)
	if err != nil {
		return err
	}
	path := filepath.Join(reportOutDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.Info("Report written", "user_id", user.ID, "path", path)
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	importConfig := excel.DefaultImportConfig()
	if importSheet != "" {
		importConfig.SheetName = importSheet
	}
	result, err := excel.ImportModulesFile(ctx, a.catalog, args[0], importConfig)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed %d rows: %d modules created, %d skipped, %d domains created\n",
		result.TotalProcessed, result.Created, result.Skipped, result.DomainsCreated)
	for _, e := range result.Errors {
		fmt.Fprintf(out, "  %s\n", e)
	}
	if cfg.Database.Type == "memory" {
		log.Warn("Imported into the in-memory store, changes are not persisted")
	}
	return nil
}
