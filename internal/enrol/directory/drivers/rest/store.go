package rest

import (
	"log/slog"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
	"github.com/aussiebroadwan/coursedesk/pkg/coursesdk"
)

// DefaultScanConcurrency bounds the per-user fan-out of
// EnrolledUserIDsInCourse when no limit is configured.
const DefaultScanConcurrency = 8

type Options struct {
	// ScanConcurrency bounds parallel per-user enrollment fetches.
	ScanConcurrency int

	Logger *slog.Logger
}

// Store is a directory.Store backed by the Directory Store REST API.
type Store struct {
	client *coursesdk.SDKClient
	scan   int
	log    *slog.Logger
}

func NewStore(client *coursesdk.SDKClient, opts Options) *Store {
	if opts.ScanConcurrency <= 0 {
		opts.ScanConcurrency = DefaultScanConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{client: client, scan: opts.ScanConcurrency, log: opts.Logger}
}

func (s *Store) Users() directory.Users     { return &usersRepo{c: s.client} }
func (s *Store) Courses() directory.Courses { return &coursesRepo{c: s.client} }
func (s *Store) Classes() directory.Classes { return &classesRepo{c: s.client} }

func (s *Store) Enrollments() directory.Enrollments {
	return &enrollmentsRepo{c: s.client, scan: s.scan, log: s.log}
}
