// enrollctl runs an enrollment conversation in the terminal against an in-memory engine.
// Each input line is one turn. When the conversation completes, the generated ticket is
// printed as JSON.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/enrollment-service/internal/embedding"
	"github.com/spec-kit/enrollment-service/internal/repository"
	"github.com/spec-kit/enrollment-service/internal/service"
	"github.com/spec-kit/enrollment-service/internal/workflow"
	"github.com/spec-kit/enrollment-service/pkg/util/errorutil"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	var (
		promptsFile string
		codecName   string
		dimensions  int
		sessionID   string
		verbose     bool
	)

	flagSet := pflag.NewFlagSet("enrollctl", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVar(&promptsFile, "prompts", "", "prompt catalog YAML file (default: built-in catalog)")
	flagSet.StringVar(&codecName, "codec", "json", "session codec: json or cbor")
	flagSet.IntVar(&dimensions, "dimensions", 1536, "length of the local ticket embedding")
	flagSet.StringVar(&sessionID, "session", "", "session id (default: random)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log engine activity to stderr")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return fmt.Errorf("unexpected argument: %s", extra[0])
	}

	logger := zap.NewNop()
	if verbose {
		devLogger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = devLogger
		defer logger.Sync() //nolint:errcheck
	}

	catalog := workflow.DefaultCatalog()
	if promptsFile != "" {
		loaded, err := workflow.LoadCatalog(promptsFile)
		if err != nil {
			return err
		}
		catalog = loaded
	}
	codec, err := repository.NewSessionCodec(codecName)
	if err != nil {
		return err
	}

	tickets := repository.NewMemoryTicketSink()
	engine := service.NewDialogueEngine(service.EngineDependencies{
		Store:    repository.NewMemorySessionStore(codec),
		Tickets:  tickets,
		Embedder: embedding.NewService(embedding.NewHashEmbedder(dimensions)),
		Flow:     workflow.NewFlow(catalog),
		Logger:   logger,
	})

	ctx := context.Background()
	fmt.Fprintln(out, "Say hello to start enrolling (Ctrl-D to quit).")
	fmt.Fprint(out, "> ")

	scanner := bufio.NewScanner(in)
	for turn := 1; scanner.Scan(); turn++ {
		result, err := engine.HandleTurn(ctx, service.TurnRequest{
			SessionID: sessionID,
			Utterance: scanner.Text(),
			TurnID:    fmt.Sprintf("line-%d", turn),
		})
		if err != nil {
			if de := errorutil.ToDomainError(err); de != nil {
				fmt.Fprintln(out, de.Message)
			}
			return err
		}
		sessionID = result.SessionID
		fmt.Fprintln(out, result.ResponseText)

		if result.IsComplete {
			return printTicket(ctx, engine, sessionID, out)
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func printTicket(ctx context.Context, engine *service.DialogueEngine, sessionID string, out io.Writer) error {
	ticket, err := engine.GetTicket(ctx, sessionID)
	if errorutil.HasCode(err, errorutil.CodeNotFound) {
		fmt.Fprintln(out, "No ticket was generated for this session.")
		return nil
	}
	if err != nil {
		return err
	}
	data, err := sonic.ConfigStd.MarshalIndent(ticket, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, strings.TrimSpace(string(data)))
	return nil
}
