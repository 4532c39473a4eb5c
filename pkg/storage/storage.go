// Package storage persists mystery documents for the HTTP API.
//
// Backends:
//   - memory: in-process map for development and tests
//   - file: one JSON file per document, for single-machine deployments
//   - mongo: MongoDB collection
//   - postgres: PostgreSQL table through database/sql and lib/pq
//
// All backends store the original source text together with its format so
// a document is served back exactly as it was uploaded.
//
//	store, err := storage.Open(ctx, storage.Options{Backend: storage.BackendMemory})
//	rec := storage.NewRecord("The Locked Study", mystery.FormatYAML, source)
//	if err := store.Save(ctx, rec); err != nil {
//	    return err
//	}
//	got, err := store.Get(ctx, rec.ID)
package storage

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	mgerrors "github.com/matzehuels/mysterygraph/pkg/errors"
	"github.com/matzehuels/mysterygraph/pkg/mystery"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Record is a stored mystery document.
type Record struct {
	ID        string         `json:"id" bson:"_id"`
	Name      string         `json:"name" bson:"name"`
	Format    mystery.Format `json:"format" bson:"format"`
	Source    string         `json:"source,omitempty" bson:"source"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}

// NewRecord creates an unsaved record. Save assigns the ID and timestamps.
func NewRecord(name string, format mystery.Format, source []byte) *Record {
	return &Record{Name: name, Format: format, Source: string(source)}
}

// Summary returns a copy of the record without its source.
func (r Record) Summary() Record {
	r.Source = ""
	return r
}

// Store is the interface for document storage backends.
type Store interface {
	// Save inserts or replaces a record. A record without an ID gets a new
	// random one; CreatedAt is set if zero and UpdatedAt always.
	Save(ctx context.Context, r *Record) error

	// Get retrieves a record by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns all records, most recently updated first.
	List(ctx context.Context) ([]Record, error)

	// Delete removes a record, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases the backend connection.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Dir is the directory of the file backend.
	Dir string

	// URI is the connection string for mongo and postgres.
	URI string

	// Database is the MongoDB database name. Defaults to "mysterygraph".
	Database string
}

// Open creates the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(opts.Dir)
	case BackendMongo:
		return NewMongoStore(ctx, opts.URI, opts.Database)
	case BackendPostgres:
		return NewPostgresStore(ctx, opts.URI)
	default:
		return nil, mgerrors.New(mgerrors.ErrCodeUnsupported, "unknown storage backend %q", opts.Backend)
	}
}

// prepare validates a record and stamps its ID and timestamps.
func prepare(r *Record, now time.Time) error {
	if r == nil {
		return mgerrors.New(mgerrors.ErrCodeInvalidInput, "record is nil")
	}
	if err := mgerrors.ValidateDocumentName(r.Name); err != nil {
		return err
	}
	if _, err := mystery.ParseFormat(string(r.Format)); err != nil {
		return mgerrors.Wrap(mgerrors.ErrCodeInvalidFormat, err, "%s", err.Error())
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	} else if !validID(r.ID) {
		return mgerrors.New(mgerrors.ErrCodeInvalidInput, "invalid document id %q", r.ID)
	}
	now = now.UTC().Truncate(time.Millisecond)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return nil
}

// validID reports whether id is a UUID. Malformed ids can never exist, so
// backends answer them with ErrNotFound without a lookup.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// sortRecords orders records most recently updated first, by ID on ties.
func sortRecords(records []Record) {
	slices.SortFunc(records, func(a, b Record) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
