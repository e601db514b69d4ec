/*
Package catalog keeps a SQLite database of processed frame files so that they
can be played back by name.
*/
package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // register the sqlite3 driver
)

// ErrNotFound is returned when no video has the requested name
var ErrNotFound = errors.New("catalog: video not found")

// Video is one processed frame file
type Video struct {
	Name       string
	Path       string
	SHA1       string
	Frames     int
	Width      int
	Height     int
	Compressed bool
}

// DB is the catalog database
type DB struct {
	db *sql.DB
}

// Open opens or creates the catalog database in file
func Open(file string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS video (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE, path TEXT NOT NULL, sha1 TEXT NOT NULL, frames INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, compressed INTEGER NOT NULL DEFAULT 0)"); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{
		db: db,
	}, nil
}

// Close closes the database
func (db *DB) Close() error {
	return db.db.Close()
}

// Put adds or replaces the video with the same name
func (db *DB) Put(v Video) error {
	if _, err := db.db.Exec("INSERT INTO video (name, path, sha1, frames, width, height, compressed) VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT(name) DO UPDATE SET path = excluded.path, sha1 = excluded.sha1, frames = excluded.frames, width = excluded.width, height = excluded.height, compressed = excluded.compressed", v.Name, v.Path, v.SHA1, v.Frames, v.Width, v.Height, v.Compressed); err != nil {
		return err
	}
	return nil
}

type scanner interface {
	Scan(...interface{}) error
}

func scanVideo(s scanner) (Video, error) {
	var v Video
	err := s.Scan(&v.Name, &v.Path, &v.SHA1, &v.Frames, &v.Width, &v.Height, &v.Compressed)
	return v, err
}

// Find returns the video with the given name or ErrNotFound
func (db *DB) Find(name string) (Video, error) {
	v, err := scanVideo(db.db.QueryRow("SELECT name, path, sha1, frames, width, height, compressed FROM video WHERE name = ?", name))
	switch err {
	case sql.ErrNoRows:
		return Video{}, ErrNotFound
	case nil:
		return v, nil
	default:
		return Video{}, err
	}
}

// FindBySHA1 returns the video whose file has the given checksum or
// ErrNotFound
func (db *DB) FindBySHA1(sha string) (Video, error) {
	v, err := scanVideo(db.db.QueryRow("SELECT name, path, sha1, frames, width, height, compressed FROM video WHERE sha1 = ? ORDER BY name LIMIT 1", sha))
	switch err {
	case sql.ErrNoRows:
		return Video{}, ErrNotFound
	case nil:
		return v, nil
	default:
		return Video{}, err
	}
}

// List returns every video ordered by name
func (db *DB) List() ([]Video, error) {
	rows, err := db.db.Query("SELECT name, path, sha1, frames, width, height, compressed FROM video ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}

	return videos, rows.Err()
}

// Delete removes the named video
func (db *DB) Delete(name string) error {
	result, err := db.db.Exec("DELETE FROM video WHERE name = ?", name)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
