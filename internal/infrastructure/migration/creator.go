package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const fileHeader = `-- {{.Name}}{{if .Direction}} ({{.Direction}}){{end}}
-- Created: {{.Created}}

`

var (
	headerTmpl   = template.Must(template.New("migration").Parse(fileHeader))
	versionRegex = regexp.MustCompile(`^(\d{6})_.+\.(up|down)\.sql$`)
	nameCleanup  = regexp.MustCompile(`[^a-z0-9]+`)
)

// MigrationFile describes a newly created up/down pair
type MigrationFile struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration writes the next sequentially numbered up/down pair into dir
func CreateMigration(dir, name string, now time.Time) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	latest, err := LatestVersion(dir)
	if err != nil {
		return nil, err
	}
	mf := &MigrationFile{Version: latest + 1, Name: slug}
	base := fmt.Sprintf("%06d_%s", mf.Version, slug)
	mf.UpPath = filepath.Join(dir, base+".up.sql")
	mf.DownPath = filepath.Join(dir, base+".down.sql")

	created := now.UTC().Format(time.RFC3339)
	if err := writeHeader(mf.UpPath, slug, "", created); err != nil {
		return nil, err
	}
	if err := writeHeader(mf.DownPath, slug, "rollback", created); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

// LatestVersion returns the highest version number in dir, or zero
func LatestVersion(dir string) (uint, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var latest uint
	for _, e := range entries {
		match := versionRegex.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		v, err := strconv.ParseUint(match[1], 10, 32)
		if err != nil {
			continue
		}
		if uint(v) > latest {
			latest = uint(v)
		}
	}
	return latest, nil
}

func writeHeader(path, name, direction, created string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return headerTmpl.Execute(f, struct{ Name, Direction, Created string }{name, direction, created})
}

func sanitizeName(name string) string {
	return strings.Trim(nameCleanup.ReplaceAllString(strings.ToLower(name), "_"), "_")
}
