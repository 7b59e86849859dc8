package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MigrationFile describes a generated up/down migration pair.
type MigrationFile struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration scaffolds an up/down pair in migrationsDir. The
// version prefix is the current timestamp (YYYYMMDDHHMMSS) so files
// sort in creation order alongside the numbered seed migrations.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	version := time.Now().Format("20060102150405")
	base := filepath.Join(migrationsDir, version+"_"+sanitizeName(name))

	mf := &MigrationFile{
		Version:  version,
		Name:     name,
		UpPath:   base + ".up.sql",
		DownPath: base + ".down.sql",
	}

	up := migrationStub(name, description, false)
	if err := os.WriteFile(mf.UpPath, []byte(up), 0o644); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}

	down := migrationStub(name, description, true)
	if err := os.WriteFile(mf.DownPath, []byte(down), 0o644); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}

	return mf, nil
}

// migrationStub renders a SQL file header in the same shape as the
// seed migrations under migrations/.
func migrationStub(name, description string, down bool) string {
	var b strings.Builder
	if down {
		fmt.Fprintf(&b, "-- Migration: %s (rollback)\n", name)
	} else {
		fmt.Fprintf(&b, "-- Migration: %s\n", name)
	}
	if description != "" {
		fmt.Fprintf(&b, "-- Description: %s\n", description)
	}
	b.WriteString("\n")
	if down {
		b.WriteString("-- Write the DOWN migration SQL here\n")
	} else {
		b.WriteString("-- Write the UP migration SQL here\n")
	}
	return b.String()
}

// sanitizeName lowercases a migration name and replaces separators with
// underscores so it is safe as a file name.
func sanitizeName(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + 'a' - 'A')
		case c == ' ', c == '-', c == '_':
			s := b.String()
			if len(s) > 0 && !strings.HasSuffix(s, "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ListMigrations returns the base names of the migration pairs found in
// migrationsDir, without the .up.sql/.down.sql suffix. A missing
// directory is reported as an empty list.
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	migrations := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		migrations = append(migrations, strings.TrimSuffix(entry.Name(), ".up.sql"))
	}
	return migrations, nil
}
