package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"naijacare/internal/routing"
	audit "naijacare/pkg/platform/audit"
	"naijacare/pkg/platform/audit/store/memory"
	"naijacare/pkg/platform/privacy"
	"naijacare/pkg/requestcontext"
)

type options struct {
	fixtures    string
	exportAudit string
	hashSalt    string
}

var csvHeader = []string{"clinic_id_hash", "decision", "timestamp", "message_length", "has_emergency_flag"}

func replay(ctx context.Context, out io.Writer, opts options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := os.Open(opts.fixtures)
	if err != nil {
		return fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()

	messages, err := loadFixtures(f)
	if err != nil {
		return err
	}

	log := audit.NewLog(memory.NewInMemoryStore(), audit.WithHasher(privacy.NewHasher(opts.hashSalt)))
	fmt.Fprintln(out, "NaijaCare prototype (simulation)")
	fmt.Fprintln(out)
	for _, msg := range messages {
		decision := routing.Route(msg)

		at := time.Now().UTC()
		if msg.Timestamp != nil {
			at = *msg.Timestamp
		}
		msgCtx := requestcontext.WithTime(ctx, at)
		if err := log.Log(msgCtx, msg.Sender, string(decision.Outcome), msg.Text, decision.IsEmergency(), at); err != nil {
			return err
		}

		fmt.Fprintf(out, "[%s] %s\n", msg.Sender, msg.Text)
		fmt.Fprintf(out, "  -> %s | Reason: %s\n", decision.Outcome, decision.Reason)
		if len(decision.Flags) > 0 {
			fmt.Fprintf(out, "  -> Flags: %s\n", strings.Join(decision.Flags, ", "))
		}
		fmt.Fprintln(out)
	}

	if opts.exportAudit == "" {
		return nil
	}
	entries, err := log.ToList(ctx)
	if err != nil {
		return err
	}
	if err := writeAuditFile(opts.exportAudit, entries); err != nil {
		return err
	}
	fmt.Fprintf(out, "Audit log exported to: %s\n", opts.exportAudit)
	return nil
}

// loadFixtures parses one message per line. Blank lines are skipped; a line
// without a sender is rejected.
func loadFixtures(r io.Reader) ([]routing.Message, error) {
	var messages []routing.Message
	reader := bufio.NewReader(r)
	line := 0
	for {
		chunk, readErr := reader.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("read fixtures: %w", readErr)
		}
		if len(chunk) > 0 {
			line++
			raw := bytes.TrimSpace(chunk)
			if len(raw) > 0 {
				var msg routing.Message
				if err := json.Unmarshal(raw, &msg); err != nil {
					return nil, fmt.Errorf("fixtures line %d: %w", line, err)
				}
				if err := msg.Validate(); err != nil {
					return nil, fmt.Errorf("fixtures line %d: %w", line, err)
				}
				messages = append(messages, msg)
			}
		}
		if readErr != nil {
			return messages, nil
		}
	}
}

func writeAuditFile(path string, entries []audit.Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := writeAuditCSV(f, entries); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeAuditCSV(w io.Writer, entries []audit.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.SubjectIDHash,
			e.Decision,
			e.Timestamp.Format(time.RFC3339),
			strconv.Itoa(e.MessageLength),
			strconv.FormatBool(e.HasEmergencyFlag),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
