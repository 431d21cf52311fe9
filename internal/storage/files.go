package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxEntries = 500

// MOTD is the message of the day, one entry per line
type MOTD struct {
	Lines []string
}

// LoadMOTD reads the message of the day from motd.txt in dataDir.
// A missing file yields an empty MOTD.
func LoadMOTD(dataDir string) (*MOTD, error) {
	path := filepath.Join(dataDir, "motd.txt")
	lines, err := readLines(path, true)
	if err != nil {
		if os.IsNotExist(err) {
			return &MOTD{}, nil
		}
		return nil, err
	}
	return &MOTD{Lines: lines}, nil
}

// AuditLog is an append-only trail of operator events kept in audit.txt,
// trimmed to the newest 500 entries
type AuditLog struct {
	path    string
	entries []string
	now     func() time.Time
}

// LoadAuditLog opens the audit trail in dataDir, reading any existing entries
func LoadAuditLog(dataDir string) (*AuditLog, error) {
	a := &AuditLog{
		path: filepath.Join(dataDir, "audit.txt"),
		now:  time.Now,
	}

	lines, err := readLines(a.path, false)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	a.entries = lines
	return a, nil
}

// Entries returns the current entries, oldest first
func (a *AuditLog) Entries() []string {
	return a.entries
}

// Record timestamps an entry, appends it and rewrites the file
func (a *AuditLog) Record(entry string) error {
	timestamp := a.now().UTC().Format("Mon Jan 02, 2006 at 15:04:05 GMT")
	a.entries = AddEntry(a.entries, fmt.Sprintf("%s: %s", timestamp, entry))
	return writeLines(a.path, a.entries)
}

// AddEntry appends a new entry, dropping the oldest beyond 500
func AddEntry(entries []string, entry string) []string {
	entries = append(entries, entry)
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}
	return entries
}

func readLines(path string, keepBlank bool) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line != "" || keepBlank {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func writeLines(path string, lines []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return err
		}
	}
	return nil
}
