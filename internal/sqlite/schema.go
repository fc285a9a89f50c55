package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL for all tables.
const (
	createObjects = `CREATE TABLE objects (
    object_id TEXT NOT NULL PRIMARY KEY,
    object_type TEXT NOT NULL,
    data_ref TEXT NOT NULL DEFAULT '',
    x REAL NOT NULL DEFAULT 0,
    y REAL NOT NULL DEFAULT 0
);`

	createCards = `CREATE TABLE cards (
    card_id TEXT NOT NULL PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    said_by TEXT NOT NULL DEFAULT '',
    stakeholder TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL DEFAULT '',
    card_type TEXT NOT NULL DEFAULT 'NORMAL',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createBoxes = `CREATE TABLE boxes (
    box_id TEXT NOT NULL PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createBoxMembers = `CREATE TABLE box_members (
    box_id TEXT NOT NULL,
    object_id TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    PRIMARY KEY (box_id, object_id)
);`
)

// Index DDL for common queries.
const (
	idxObjectsRef       = `CREATE INDEX idx_objects_ref ON objects(object_type, data_ref);`
	idxBoxMembersObject = `CREATE INDEX idx_box_members_object ON box_members(object_id);`
)

var schemaDDL = []string{
	createObjects,
	createCards,
	createBoxes,
	createBoxMembers,
}

var indexDDL = []string{
	idxObjectsRef,
	idxBoxMembersObject,
}

func createSchema(db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}
