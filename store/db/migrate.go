package db

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"text/template"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed schema/*.sql
var embedFiles embed.FS

// MigrateData fills the dialect specific parts of the schema templates.
type MigrateData struct {
	Driver string
}

// Address is the column type of base58 keys. Keys must compare bytewise so
// paging by address matches across drivers.
func (d MigrateData) Address() string {
	switch d.Driver {
	case DriverMySQL:
		return "VARCHAR(64) CHARACTER SET ascii COLLATE ascii_bin"
	case DriverPostgres:
		return `VARCHAR(64) COLLATE "C"`
	default:
		return "VARCHAR(64)"
	}
}

func (d MigrateData) Blob() string {
	if d.Driver == DriverPostgres {
		return "BYTEA"
	}

	return "BLOB"
}

func (d MigrateData) Serial() string {
	switch d.Driver {
	case DriverMySQL:
		return "BIGINT AUTO_INCREMENT PRIMARY KEY"
	case DriverPostgres:
		return "BIGSERIAL PRIMARY KEY"
	default:
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
}

// Migrate runs the embedded schema migrations for the connection's driver.
func Migrate(db *DB) error {
	d, err := iofs.New(&templateFS{
		data: MigrateData{Driver: db.Driver},
		FS:   embedFiles,
	}, "schema")
	if err != nil {
		return err
	}

	var driver database.Driver
	switch db.Driver {
	case DriverMySQL:
		driver, err = mysql.WithInstance(db.Master(), &mysql.Config{})
	case DriverPostgres:
		driver, err = postgres.WithInstance(db.Master(), &postgres.Config{})
	case DriverSQLite:
		driver, err = sqlite3.WithInstance(db.Master(), &sqlite3.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", db.Driver)
	}

	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", d, db.Driver, driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

type templateFile struct {
	io.ReadCloser
	info *fileInfoWithSize
}

func (t *templateFile) Stat() (fs.FileInfo, error) {
	return t.info, nil
}

// templateFS renders every schema file as a text/template before the
// migration source reads it.
type templateFS struct {
	data any
	embed.FS
}

func (t *templateFS) Open(name string) (fs.File, error) {
	file, err := t.FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return t.FS.Open(name)
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, t.data); err != nil {
		return nil, err
	}

	return &templateFile{
		ReadCloser: io.NopCloser(bytes.NewReader(buf.Bytes())),
		info:       &fileInfoWithSize{info, int64(buf.Len())},
	}, nil
}

type fileInfoWithSize struct {
	fs.FileInfo
	size int64
}

func (f *fileInfoWithSize) Size() int64 {
	return f.size
}
