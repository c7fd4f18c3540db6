// Package migration applies embedded SQL migrations to tenant schemas.
//
// Each schema carries its own alembic_version marker, so schemas move between
// revisions independently. Revisions form a single linear chain ordered by the
// numeric prefix of their file names:
//
//	0001_daf594c78b31_initial_create_shared_schema.up.sql
//	0001_daf594c78b31_initial_create_shared_schema.down.sql
package migration

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var embedded embed.FS

// EmbeddedDir is the directory of the embedded migrations inside the package
const EmbeddedDir = "sql"

// Symbolic revision targets
const (
	TargetHead = "head"
	TargetBase = "base"
)

var (
	// ErrUnknownRevision is returned when a revision cannot be located
	ErrUnknownRevision = errors.New("can't locate revision")
	// ErrAmbiguousRevision is returned when a prefix matches several revisions
	ErrAmbiguousRevision = errors.New("ambiguous revision")
	// ErrWrongDirection is returned when an upgrade targets an older revision or vice versa
	ErrWrongDirection = errors.New("revision is in the wrong direction")
	// ErrIrreversible is returned when a downgrade reaches a revision without a down script
	ErrIrreversible = errors.New("revision has no downgrade")
)

var (
	revisionIDPattern = regexp.MustCompile(`^[0-9a-f]+$`)
	relativePattern   = regexp.MustCompile(`^[+-][0-9]+$`)
)

// Revision is one step of the migration chain
type Revision struct {
	Order   uint
	ID      string
	Parent  string // previous revision id, empty for the first one
	Slug    string
	Message string
	Up      string
	Down    string
	HasDown bool
}

// Plan is the ordered, linear chain of revisions
type Plan struct {
	revisions []Revision
	index     map[string]int
}

// Embedded loads the migrations compiled into the binary
func Embedded() (*Plan, error) {
	return Load(embedded, EmbeddedDir)
}

// Load reads a plan from dir in fsys through the golang-migrate iofs source.
func Load(fsys fs.FS, dir string) (*Plan, error) {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	defer src.Close()

	plan := &Plan{index: make(map[string]int)}
	version, err := src.First()
	for err == nil {
		rev, rerr := readRevision(src, version)
		if rerr != nil {
			return nil, rerr
		}
		if _, dup := plan.index[rev.ID]; dup {
			return nil, fmt.Errorf("duplicate revision id %s", rev.ID)
		}
		if n := len(plan.revisions); n > 0 {
			rev.Parent = plan.revisions[n-1].ID
		}
		plan.index[rev.ID] = len(plan.revisions)
		plan.revisions = append(plan.revisions, rev)

		version, err = src.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read migration source: %w", err)
	}
	return plan, nil
}

func readRevision(src source.Driver, version uint) (Revision, error) {
	r, identifier, err := src.ReadUp(version)
	if err != nil {
		return Revision{}, fmt.Errorf("read up migration %d: %w", version, err)
	}
	up, err := readAll(r)
	if err != nil {
		return Revision{}, fmt.Errorf("read up migration %d: %w", version, err)
	}

	id, slug, _ := strings.Cut(identifier, "_")
	if !revisionIDPattern.MatchString(id) {
		return Revision{}, fmt.Errorf("migration %d: invalid revision id %q", version, id)
	}

	rev := Revision{
		Order:   version,
		ID:      id,
		Slug:    slug,
		Message: headerValue(up, "Message"),
		Up:      up,
	}
	if rev.Message == "" {
		rev.Message = strings.ReplaceAll(slug, "_", " ")
	}

	r, _, err = src.ReadDown(version)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Revision{}, fmt.Errorf("read down migration %d: %w", version, err)
	default:
		if rev.Down, err = readAll(r); err != nil {
			return Revision{}, fmt.Errorf("read down migration %d: %w", version, err)
		}
		rev.HasDown = true
	}
	return rev, nil
}

func readAll(r io.ReadCloser) (string, error) {
	defer r.Close()
	b, err := io.ReadAll(r)
	return string(b), err
}

// headerValue returns the value of a "-- Key: value" comment line
func headerValue(sql, key string) string {
	prefix := "-- " + key + ":"
	for _, line := range strings.Split(sql, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}

// Revisions returns the chain from oldest to newest
func (p *Plan) Revisions() []Revision {
	out := make([]Revision, len(p.revisions))
	copy(out, p.revisions)
	return out
}

// Head returns the newest revision id, or "" for an empty plan
func (p *Plan) Head() string {
	if len(p.revisions) == 0 {
		return ""
	}
	return p.revisions[len(p.revisions)-1].ID
}

// position returns the index of id in the chain; base ("") is -1
func (p *Plan) position(id string) (int, error) {
	if id == "" {
		return -1, nil
	}
	i, ok := p.index[id]
	if !ok {
		return 0, fmt.Errorf("%w identified by '%s'", ErrUnknownRevision, id)
	}
	return i, nil
}

// Resolve turns a target expression into a revision id, "" meaning base.
// Accepted forms are head, base, a full or unique-prefix revision id, and
// +N / -N relative to current.
func (p *Plan) Resolve(current, target string) (string, error) {
	target = strings.TrimSpace(target)
	switch {
	case target == TargetHead:
		return p.Head(), nil
	case target == TargetBase:
		return "", nil
	case relativePattern.MatchString(target):
		n, err := strconv.Atoi(target)
		if err != nil {
			return "", fmt.Errorf("%w identified by '%s'", ErrUnknownRevision, target)
		}
		from, err := p.position(current)
		if err != nil {
			return "", err
		}
		to := from + n
		if to < -1 || to >= len(p.revisions) {
			return "", fmt.Errorf("relative revision %s is out of range from '%s'", target, displayRevision(current))
		}
		if to == -1 {
			return "", nil
		}
		return p.revisions[to].ID, nil
	}

	if _, ok := p.index[target]; ok {
		return target, nil
	}
	var matches []string
	for _, r := range p.revisions {
		if target != "" && strings.HasPrefix(r.ID, target) {
			matches = append(matches, r.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w identified by '%s'", ErrUnknownRevision, target)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w '%s' matches %s", ErrAmbiguousRevision, target, strings.Join(matches, ", "))
	}
}

// UpgradePath returns the revisions to apply, oldest first, to move from one
// revision to a newer one.
func (p *Plan) UpgradePath(from, to string) ([]Revision, error) {
	fi, err := p.position(from)
	if err != nil {
		return nil, err
	}
	ti, err := p.position(to)
	if err != nil {
		return nil, err
	}
	if ti < fi {
		return nil, fmt.Errorf("%w: '%s' is older than current '%s'", ErrWrongDirection, displayRevision(to), displayRevision(from))
	}
	return p.Revisions()[fi+1 : ti+1], nil
}

// DowngradePath returns the revisions to revert, newest first, to move from
// one revision to an older one.
func (p *Plan) DowngradePath(from, to string) ([]Revision, error) {
	fi, err := p.position(from)
	if err != nil {
		return nil, err
	}
	ti, err := p.position(to)
	if err != nil {
		return nil, err
	}
	if ti > fi {
		return nil, fmt.Errorf("%w: '%s' is newer than current '%s'", ErrWrongDirection, displayRevision(to), displayRevision(from))
	}
	steps := make([]Revision, 0, fi-ti)
	for i := fi; i > ti; i-- {
		rev := p.revisions[i]
		if !rev.HasDown {
			return nil, fmt.Errorf("%w: %s", ErrIrreversible, rev.ID)
		}
		steps = append(steps, rev)
	}
	return steps, nil
}

func displayRevision(id string) string {
	if id == "" {
		return TargetBase
	}
	return id
}
