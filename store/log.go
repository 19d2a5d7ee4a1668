package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// recordLog is the shared file layout behind both stores: an append-only
// JSONL log for replay plus one JSON file per record for random access.
type recordLog struct {
	dir     string
	logPath string
}

func openRecordLog(dir string) (*recordLog, error) {
	if dir == "" {
		return nil, errors.New("store: record log dir is empty")
	}
	if err := os.MkdirAll(filepath.Join(dir, logsSubdir), 0o750); err != nil {
		return nil, fmt.Errorf("store: create log dir: %w", err)
	}
	return &recordLog{
		dir:     dir,
		logPath: filepath.Join(dir, indexLogFilename),
	}, nil
}

// append writes the per-record file, then appends one line to the log. The
// log append is a single O_APPEND write, so concurrent writers never
// interleave within a record.
func (l *recordLog) append(recordID string, rec any) error {
	pretty, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode record %s: %w", recordID, err)
	}
	perRecord := filepath.Join(l.dir, logsSubdir, recordID+".json")
	if err := os.WriteFile(perRecord, append(pretty, '\n'), 0o600); err != nil {
		return fmt.Errorf("store: write record file: %w", err)
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: encode record %s: %w", recordID, err)
	}
	f, err := os.OpenFile(l.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("store: open log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("store: append record %s: %w", recordID, err)
	}
	return f.Sync()
}

// replay yields every log line in append order. The callback receives the
// raw line and its 1-based line number and may return an error to abort.
func (l *recordLog) replay(fn func(line []byte, lineNo int) error) error {
	f, err := os.Open(l.logPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("store: open log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line, lineNo); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("store: read log: %w", err)
	}
	return nil
}
