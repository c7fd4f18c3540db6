package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
)

const revisionUpTemplate = `-- Revision: {{.ID}}
-- Revises: {{.Parent}}
-- Created: {{.Timestamp}}
-- Message: {{.Message}}

-- Write your UP migration SQL here. Unqualified names resolve to the tenant schema.

`

const revisionDownTemplate = `-- Revision: {{.ID}} (rollback)
-- Created: {{.Timestamp}}

-- Write your DOWN migration SQL here

`

// RevisionFile describes a newly generated revision pair
type RevisionFile struct {
	Order     uint
	ID        string
	Parent    string
	Message   string
	Timestamp string
	UpPath    string
	DownPath  string
}

// CreateRevision writes an empty up/down pair that follows the newest
// revision in dir.
func CreateRevision(dir, message string) (*RevisionFile, error) {
	slug := sanitizeName(message)
	if slug == "" {
		return nil, fmt.Errorf("revision message %q has no usable characters", message)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListRevisions(dir)
	if err != nil {
		return nil, err
	}
	rf := &RevisionFile{
		Order:     1,
		ID:        newRevisionID(),
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if n := len(existing); n > 0 {
		rf.Order = existing[n-1].Order + 1
		rf.Parent = existing[n-1].ID
	}

	base := fmt.Sprintf("%04d_%s_%s", rf.Order, rf.ID, slug)
	rf.UpPath = filepath.Join(dir, base+".up.sql")
	rf.DownPath = filepath.Join(dir, base+".down.sql")

	if err := writeTemplate(rf.UpPath, revisionUpTemplate, rf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeTemplate(rf.DownPath, revisionDownTemplate, rf); err != nil {
		_ = os.Remove(rf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return rf, nil
}

// newRevisionID returns 12 random hex characters
func newRevisionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func writeTemplate(path, tmplContent string, data *RevisionFile) error {
	tmpl, err := template.New("revision").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// sanitizeName converts a revision message to a safe file name fragment
func sanitizeName(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
			result = append(result, c)
		case c >= 'A' && c <= 'Z':
			result = append(result, c+'a'-'A')
		case c >= '0' && c <= '9':
			result = append(result, c)
		case c == ' ' || c == '-' || c == '_':
			if len(result) > 0 && result[len(result)-1] != '_' {
				result = append(result, '_')
			}
		}
	}
	if len(result) > 0 && result[len(result)-1] == '_' {
		result = result[:len(result)-1]
	}
	return string(result)
}

// RevisionEntry is one revision found on disk
type RevisionEntry struct {
	Order uint
	ID    string
	Slug  string
}

// ListRevisions returns the revisions in dir ordered by their numeric prefix.
// A missing directory yields an empty list.
func ListRevisions(dir string) ([]RevisionEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RevisionEntry{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	out := make([]RevisionEntry, 0)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		parts := strings.SplitN(strings.TrimSuffix(name, ".up.sql"), "_", 3)
		if len(parts) < 2 {
			continue
		}
		order, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil || !revisionIDPattern.MatchString(parts[1]) {
			continue
		}
		e := RevisionEntry{Order: uint(order), ID: parts[1]}
		if len(parts) == 3 {
			e.Slug = parts[2]
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}
