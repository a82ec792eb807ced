// Package store persists extraction results in SQLite.
package store

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/senalab/signdict"
)

// Dictionary identifies the source sign-language dictionary a run
// extracted from.
type Dictionary struct {
	LanguageCode   string // e.g. "lsch"
	LanguageName   string // e.g. "Lengua de Señas Chilena"
	TargetLanguage string // e.g. "es"
	Region         string
	Version        string
	Source         string
}

// Store wraps the SQLite database holding signs and their relations.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, enables WAL mode and
// foreign keys, and creates all tables idempotently.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to apply %s", pragma)
		}
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS dictionaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			language_code TEXT NOT NULL,
			language_name TEXT NOT NULL,
			target_language TEXT NOT NULL,
			region TEXT NOT NULL DEFAULT '',
			version TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(language_code, region, version)
		)`,
		`CREATE TABLE IF NOT EXISTS signs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dictionary_id INTEGER NOT NULL REFERENCES dictionaries(id),
			headword TEXT NOT NULL,
			definition TEXT NOT NULL DEFAULT '',
			grammatical_category TEXT NOT NULL DEFAULT '',
			verb_type TEXT NOT NULL DEFAULT '',
			variant_number INTEGER NOT NULL DEFAULT 1,
			page_number INTEGER NOT NULL DEFAULT 0,
			raw_text TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(dictionary_id, headword, variant_number)
		)`,
		`CREATE TABLE IF NOT EXISTS sign_translations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sign_id INTEGER NOT NULL REFERENCES signs(id) ON DELETE CASCADE,
			target_language TEXT NOT NULL,
			translation TEXT NOT NULL,
			is_primary INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS sign_relations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sign_id INTEGER NOT NULL REFERENCES signs(id) ON DELETE CASCADE,
			relation_type TEXT NOT NULL CHECK(relation_type IN ('synonym', 'antonym')),
			related_word TEXT NOT NULL,
			language TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sign_images (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sign_id INTEGER NOT NULL REFERENCES signs(id) ON DELETE CASCADE,
			image_path TEXT NOT NULL,
			sequence_order INTEGER NOT NULL DEFAULT 0,
			is_primary INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS extraction_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dictionary_id INTEGER NOT NULL REFERENCES dictionaries(id),
			pdf_filename TEXT NOT NULL,
			total_entries INTEGER NOT NULL,
			successful_entries INTEGER NOT NULL,
			failed_entries INTEGER NOT NULL,
			start_page INTEGER NOT NULL,
			end_page INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signs_headword ON signs(headword)`,
		`CREATE INDEX IF NOT EXISTS idx_translations_sign ON sign_translations(sign_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, "failed to create table")
		}
	}
	return nil
}

// UpsertDictionary creates or updates the dictionary row and returns
// its id.
func (s *Store) UpsertDictionary(d Dictionary) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		INSERT INTO dictionaries (language_code, language_name, target_language, region, version, source)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(language_code, region, version) DO UPDATE SET
			language_name = excluded.language_name,
			target_language = excluded.target_language,
			source = excluded.source
		RETURNING id`,
		d.LanguageCode, d.LanguageName, d.TargetLanguage, d.Region, d.Version, d.Source,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "failed to upsert dictionary")
	}
	return id, nil
}

// SaveResult writes all entries of a run in one transaction. Existing
// signs matching (dictionary, headword, variant) are updated and their
// child rows replaced. Returns the number of saved signs.
func (s *Store) SaveResult(dictionaryID int64, targetLanguage string, result *signdict.Result) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	saved := 0
	for _, entry := range result.Entries {
		if err := saveEntry(tx, dictionaryID, targetLanguage, entry); err != nil {
			return saved, errors.Wrapf(err, "failed to save %s", entry.Headword)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return saved, errors.Wrap(err, "failed to commit")
	}
	return saved, nil
}

func saveEntry(tx *sql.Tx, dictionaryID int64, targetLanguage string, entry signdict.ParsedEntry) error {
	var signID int64
	err := tx.QueryRow(`
		INSERT INTO signs (dictionary_id, headword, definition, grammatical_category,
			verb_type, variant_number, page_number, raw_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(dictionary_id, headword, variant_number) DO UPDATE SET
			definition = excluded.definition,
			grammatical_category = excluded.grammatical_category,
			verb_type = excluded.verb_type,
			page_number = excluded.page_number,
			raw_text = excluded.raw_text
		RETURNING id`,
		dictionaryID, entry.Headword, entry.Definition, entry.GrammaticalCategory,
		entry.VerbType, entry.VariantNumber, entry.PageNumber, entry.RawText,
	).Scan(&signID)
	if err != nil {
		return err
	}

	// Replace child rows wholesale; re-extraction wins.
	for _, table := range []string{"sign_translations", "sign_relations", "sign_images"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE sign_id = ?", signID); err != nil {
			return err
		}
	}

	for i, translation := range entry.Translations {
		if _, err := tx.Exec(`
			INSERT INTO sign_translations (sign_id, target_language, translation, is_primary)
			VALUES (?, ?, ?, ?)`,
			signID, targetLanguage, translation, boolToInt(i == 0)); err != nil {
			return err
		}
	}

	for _, synonym := range entry.Synonyms {
		if err := insertRelation(tx, signID, "synonym", synonym, targetLanguage); err != nil {
			return err
		}
	}
	for _, antonym := range entry.Antonyms {
		if err := insertRelation(tx, signID, "antonym", antonym, targetLanguage); err != nil {
			return err
		}
	}

	for i, path := range entry.ImagePaths {
		if _, err := tx.Exec(`
			INSERT INTO sign_images (sign_id, image_path, sequence_order, is_primary)
			VALUES (?, ?, ?, ?)`,
			signID, path, i, boolToInt(i == 0)); err != nil {
			return err
		}
	}

	return nil
}

func insertRelation(tx *sql.Tx, signID int64, relationType, word, language string) error {
	_, err := tx.Exec(`
		INSERT INTO sign_relations (sign_id, relation_type, related_word, language)
		VALUES (?, ?, ?, ?)`,
		signID, relationType, word, language)
	return err
}

// LogExtraction records one extraction run for audit.
func (s *Store) LogExtraction(dictionaryID int64, pdfFilename string, report signdict.ValidationReport, startPage, endPage int) error {
	_, err := s.db.Exec(`
		INSERT INTO extraction_log (dictionary_id, pdf_filename, total_entries,
			successful_entries, failed_entries, start_page, end_page)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		dictionaryID, pdfFilename, report.TotalEntries, report.Successful,
		report.Failed, startPage, endPage)
	return errors.Wrap(err, "failed to log extraction")
}

// CountSigns returns the number of stored signs for a dictionary.
func (s *Store) CountSigns(dictionaryID int64) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM signs WHERE dictionary_id = ?", dictionaryID).Scan(&n)
	return n, errors.Wrap(err, "failed to count signs")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
