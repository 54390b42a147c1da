package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/BrianCLong/govgate/pkg/audit"
	"github.com/BrianCLong/govgate/pkg/audit/export"
	"github.com/BrianCLong/govgate/pkg/cli"
	"github.com/BrianCLong/govgate/pkg/config"
)

var auditFlags struct {
	backend    string
	tenant     string
	decision   string
	breakGlass bool
	start      string
	end        string
	limit      int
	offset     int
	format     string
	output     string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query and export audit evidence",
	Long: `Query and export governance audit records.

Every verdict the gateway seals leaves a record in the audit store.
The audit command reads that store for compliance review: filtered
queries, and tamper-evident export bundles.

Subcommands:
  query   - Query audit records with filters
  export  - Export records as a verifiable JSONL bundle
  verify  - Verify a previously exported bundle

Examples:
  # All denials for one tenant
  govgate audit query --tenant tenant-a --decision deny

  # Every break-glass override in a window
  govgate audit query --break-glass --start 2026-08-01T00:00:00Z

  # Export evidence for an audit period
  govgate audit export --output ./evidence --start 2026-08-01T00:00:00Z --end 2026-09-01T00:00:00Z`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit records",
	Long: `Query audit records with filters.

Timestamps use RFC3339, e.g. 2026-08-01T00:00:00Z.

Examples:
  # Most recent 100 records
  govgate audit query

  # Denials for one tenant as JSON
  govgate audit query --tenant tenant-a --decision deny --format json`,
	RunE: queryAudit,
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit records as a verifiable bundle",
	Long: `Export matching audit records as a JSONL bundle with a manifest.

The bundle directory contains records.jsonl and manifest.json; the
manifest carries the record count and the SHA-256 of the records file
so auditors can prove the export was not altered after the fact.`,
	RunE: exportAudit,
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify [bundle-dir]",
	Short: "Verify an exported audit bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  verifyAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd, auditExportCmd, auditVerifyCmd)

	for _, c := range []*cobra.Command{auditQueryCmd, auditExportCmd} {
		c.Flags().StringVar(&auditFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
		c.Flags().StringVar(&auditFlags.tenant, "tenant", "", "filter by tenant ID")
		c.Flags().StringVar(&auditFlags.decision, "decision", "", "filter by decision (allow, deny, degrade)")
		c.Flags().BoolVar(&auditFlags.breakGlass, "break-glass", false, "only break-glass override records")
		c.Flags().StringVar(&auditFlags.start, "start", "", "start of time window (RFC3339)")
		c.Flags().StringVar(&auditFlags.end, "end", "", "end of time window (RFC3339)")
	}
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", 100, "max results")
	auditQueryCmd.Flags().IntVar(&auditFlags.offset, "offset", 0, "pagination offset")
	auditQueryCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json")
	auditExportCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "bundle output directory (required)")
	_ = auditExportCmd.MarkFlagRequired("output")
}

func buildAuditQuery() (*audit.Query, error) {
	q := &audit.Query{
		TenantID: auditFlags.tenant,
		Decision: auditFlags.decision,
		Limit:    auditFlags.limit,
		Offset:   auditFlags.offset,
	}
	if auditFlags.breakGlass {
		yes := true
		q.BreakGlass = &yes
	}
	if auditFlags.start != "" {
		ts, err := time.Parse(time.RFC3339, auditFlags.start)
		if err != nil {
			return nil, fmt.Errorf("invalid --start: %w", err)
		}
		q.StartTime = &ts
	}
	if auditFlags.end != "" {
		ts, err := time.Parse(time.RFC3339, auditFlags.end)
		if err != nil {
			return nil, fmt.Errorf("invalid --end: %w", err)
		}
		q.EndTime = &ts
	}
	return q, nil
}

func openAuditStorage() (audit.Storage, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	auditCfg := cfg.Audit
	if auditFlags.backend != "" {
		auditCfg.Backend = auditFlags.backend
	}
	return newAuditStorage(&auditCfg)
}

func queryAudit(cmd *cobra.Command, args []string) error {
	store, err := openAuditStorage()
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}
	defer store.Close()

	q, err := buildAuditQuery()
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}

	ctx := context.Background()
	records, err := store.Query(ctx, q)
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}

	if auditFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, records)
	}

	if len(records) == 0 {
		fmt.Println("No records found")
		return nil
	}
	for _, r := range records {
		bg := ""
		if r.BreakGlass {
			bg = " [break-glass]"
		}
		fmt.Printf("%s  %-7s  %-20s  %s  %v%s\n",
			r.Timestamp.Format(time.RFC3339),
			r.Decision,
			r.TenantID,
			r.Route,
			r.ReasonCodes,
			bg,
		)
	}
	fmt.Printf("\n%d records\n", len(records))
	return nil
}

func exportAudit(cmd *cobra.Command, args []string) error {
	store, err := openAuditStorage()
	if err != nil {
		return cli.NewCommandError("audit export", err)
	}
	defer store.Close()

	q, err := buildAuditQuery()
	if err != nil {
		return cli.NewCommandError("audit export", err)
	}
	q.Limit = 0 // exports are never truncated

	ctx := context.Background()
	records, err := store.Query(ctx, q)
	if err != nil {
		return cli.NewCommandError("audit export", err)
	}

	manifest, err := export.NewJSONLExporter().WriteBundle(ctx, records, auditFlags.output)
	if err != nil {
		return cli.NewCommandError("audit export", err)
	}

	fmt.Printf("✓ Exported %d records to %s\n", manifest.RecordCount, auditFlags.output)
	fmt.Printf("  sha256: %s\n", manifest.SHA256)
	return nil
}

func verifyAudit(cmd *cobra.Command, args []string) error {
	manifest, err := export.VerifyBundle(args[0])
	if err != nil {
		return cli.NewCommandError("audit verify", err)
	}
	fmt.Printf("✓ Bundle verified: %d records, sha256 %s\n", manifest.RecordCount, manifest.SHA256)
	return nil
}
