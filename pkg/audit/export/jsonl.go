package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BrianCLong/govgate/pkg/audit"
)

// JSONLExporter writes audit records as JSON Lines, one record per
// line. Output is deterministic for a given record slice so bundle
// hashes are reproducible.
type JSONLExporter struct {
	logger *slog.Logger
}

// NewJSONLExporter creates a JSONL exporter.
func NewJSONLExporter() *JSONLExporter {
	return &JSONLExporter{
		logger: slog.Default().With("component", "audit.export"),
	}
}

// Export writes records to w in JSONL format.
func (e *JSONLExporter) Export(ctx context.Context, records []*audit.Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return audit.NewExportError("jsonl", len(records), err)
		}
		if err := enc.Encode(rec); err != nil {
			return audit.NewExportError("jsonl", i, err)
		}
	}
	return nil
}

// Manifest describes an exported evidence bundle.
type Manifest struct {
	Format      string    `json:"format"`
	RecordCount int       `json:"record_count"`
	SHA256      string    `json:"sha256"`
	CreatedAt   time.Time `json:"created_at"`
}

// BundleFiles are the file names written inside a bundle directory.
const (
	BundleRecordsFile  = "records.jsonl"
	BundleManifestFile = "manifest.json"
)

// WriteBundle exports records into dir as a records file plus a
// manifest carrying the sha256 of the records file. External audit
// tooling verifies the hash before ingesting the bundle.
func (e *JSONLExporter) WriteBundle(ctx context.Context, records []*audit.Record, dir string) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, audit.NewExportError("jsonl", len(records), err)
	}

	recordsPath := filepath.Join(dir, BundleRecordsFile)
	f, err := os.Create(recordsPath)
	if err != nil {
		return nil, audit.NewExportError("jsonl", len(records), err)
	}

	h := sha256.New()
	if err := e.Export(ctx, records, io.MultiWriter(f, h)); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, audit.NewExportError("jsonl", len(records), err)
	}

	manifest := &Manifest{
		Format:      "jsonl",
		RecordCount: len(records),
		SHA256:      hex.EncodeToString(h.Sum(nil)),
		CreatedAt:   time.Now().UTC(),
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, audit.NewExportError("jsonl", len(records), err)
	}
	manifestPath := filepath.Join(dir, BundleManifestFile)
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return nil, audit.NewExportError("jsonl", len(records), err)
	}

	e.logger.Info("audit bundle written",
		"dir", dir,
		"record_count", manifest.RecordCount,
		"sha256", manifest.SHA256,
	)
	return manifest, nil
}

// VerifyBundle recomputes the records file hash and compares it to the
// manifest. Returns the manifest on success.
func VerifyBundle(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, BundleManifestFile))
	if err != nil {
		return nil, audit.NewExportError("jsonl", 0, err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, audit.NewExportError("jsonl", 0, err)
	}

	records, err := os.ReadFile(filepath.Join(dir, BundleRecordsFile))
	if err != nil {
		return nil, audit.NewExportError("jsonl", manifest.RecordCount, err)
	}
	sum := sha256.Sum256(records)
	if got := hex.EncodeToString(sum[:]); got != manifest.SHA256 {
		return nil, audit.NewExportError("jsonl", manifest.RecordCount,
			fmt.Errorf("bundle hash mismatch: manifest %s, computed %s", manifest.SHA256, got))
	}
	return &manifest, nil
}
