package jobs

// #region imports
import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #endregion

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	job_id        TEXT PRIMARY KEY,
	job_type      TEXT NOT NULL,
	status        TEXT NOT NULL,
	payload_json  TEXT NOT NULL,
	result_json   TEXT,
	error_message TEXT,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_status
ON jobs(status, created_at);
`

// #endregion schema

// #region job

// Job is one queued pipeline run and its persisted outcome.
type Job struct {
	ID           string
	Type         JobType
	Status       Status
	PayloadJSON  string
	ResultJSON   string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ErrNoQueuedJobs is returned by NextQueued when the queue is drained.
var ErrNoQueuedJobs = errors.New("jobs: no queued jobs")

// #endregion job

// #region store

// Store manages jobs in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region create

// Create enqueues a new job with the given payload and returns it.
func (s *Store) Create(jobType JobType, payloadJSON string) (Job, error) {
	now := time.Now().UTC()
	job := Job{
		ID:          uuid.NewString(),
		Type:        jobType,
		Status:      StatusQueued,
		PayloadJSON: payloadJSON,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.Exec(`
		INSERT INTO jobs (job_id, job_type, status, payload_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		job.ID, string(job.Type), string(job.Status), job.PayloadJSON,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return Job{}, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

// #endregion create

// #region get

// Get loads a job by id.
func (s *Store) Get(jobID string) (Job, error) {
	row := s.db.QueryRow(`
		SELECT job_id, job_type, status, payload_json,
		       COALESCE(result_json, ''), COALESCE(error_message, ''),
		       created_at, updated_at
		FROM jobs WHERE job_id = ?`, jobID)
	return scanJob(row)
}

// NextQueued returns the oldest queued job, or ErrNoQueuedJobs.
func (s *Store) NextQueued() (Job, error) {
	row := s.db.QueryRow(`
		SELECT job_id, job_type, status, payload_json,
		       COALESCE(result_json, ''), COALESCE(error_message, ''),
		       created_at, updated_at
		FROM jobs WHERE status = ? ORDER BY created_at LIMIT 1`,
		string(StatusQueued))
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNoQueuedJobs
	}
	return job, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var job Job
	var jobType, status, createdAt, updatedAt string
	if err := row.Scan(&job.ID, &jobType, &status, &job.PayloadJSON,
		&job.ResultJSON, &job.ErrorMessage, &createdAt, &updatedAt); err != nil {
		return Job{}, err
	}
	job.Type = JobType(jobType)
	job.Status = Status(status)
	job.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	job.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return job, nil
}

// #endregion get

// #region lifecycle

// MarkRunning transitions a queued job to running.
func (s *Store) MarkRunning(jobID string) error {
	return s.setStatus(jobID, StatusRunning, "", "")
}

// MarkSucceeded transitions a running job to succeeded with its result.
func (s *Store) MarkSucceeded(jobID, resultJSON string) error {
	return s.setStatus(jobID, StatusSucceeded, resultJSON, "")
}

// MarkFailed transitions a running job to failed with an error message.
func (s *Store) MarkFailed(jobID, errorMessage string) error {
	return s.setStatus(jobID, StatusFailed, "", errorMessage)
}

// setStatus enforces the lifecycle state machine before persisting.
func (s *Store) setStatus(jobID string, to Status, resultJSON, errorMessage string) error {
	job, err := s.Get(jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if err := Transition(job.Status, to); err != nil {
		return err
	}

	_, err = s.db.Exec(`
		UPDATE jobs
		SET status = ?, result_json = NULLIF(?, ''), error_message = NULLIF(?, ''), updated_at = ?
		WHERE job_id = ?`,
		string(to), resultJSON, errorMessage,
		time.Now().UTC().Format(time.RFC3339), jobID,
	)
	if err != nil {
		return fmt.Errorf("update job %s: %w", jobID, err)
	}
	return nil
}

// #endregion lifecycle
