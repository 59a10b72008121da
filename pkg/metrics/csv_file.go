// Package metrics provides functions to record metrics data.
// It is a very thin layer over OpenTelemetry, but it can
// also write logs to local files for simple setups.
package metrics

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/tzrikka/revowners/internal/logger"
	"github.com/tzrikka/revowners/internal/otel"
	"github.com/tzrikka/revowners/pkg/config"
	"github.com/tzrikka/xdg"
)

const (
	RunsCounter = "revowners.runs"

	fileFlags = os.O_APPEND | os.O_CREATE | os.O_WRONLY
	filePerms = xdg.NewFilePermissions
)

var muRuns sync.Mutex

// Run summarizes a single execution of a CI flow.
type Run struct {
	Flow         string
	MergeRequest int
	Outcome      string
}

// RecordRun increments the OpenTelemetry runs counter, and also appends a
// line to a local CSV file if a path is specified. A bare file name is
// placed in the app's XDG data directory. Errors are logged, not returned.
func RecordRun(ctx context.Context, path string, r Run) {
	otel.IncrementCounter(ctx, RunsCounter, 1, map[string]string{"flow": r.Flow, "outcome": r.Outcome})

	if path == "" {
		return
	}

	muRuns.Lock()
	defer muRuns.Unlock()

	path, err := runLogPath(path)
	if err == nil {
		now := time.Now().UTC().Format(time.RFC3339)
		err = AppendToCSVFile(path, []string{now, r.Flow, strconv.Itoa(r.MergeRequest), r.Outcome})
	}
	if err != nil {
		logger.FromContext(ctx).Error("metrics error: failed to append run to CSV file",
			slog.Any("error", err), slog.String("path", path))
	}
}

func runLogPath(path string) (string, error) {
	if filepath.Base(path) != path {
		return path, nil
	}
	return xdg.CreateFile(xdg.DataHome, config.DirName, path)
}

func AppendToCSVFile(path string, record []string) error {
	f, err := os.OpenFile(path, fileFlags, filePerms) //gosec:disable G304 -- false positive
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(record); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
