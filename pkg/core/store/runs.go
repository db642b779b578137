// Package store persists valuation runs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dcf_valuation/pkg/core/report"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Run is one persisted valuation.
type Run struct {
	ID        string         `json:"id"`
	Ticker    string         `json:"ticker"`
	CreatedAt time.Time      `json:"created_at"`
	Report    *report.Report `json:"report"`
}

// RunStore saves runs to Postgres when a pool is given and to JSON files under dir otherwise.
type RunStore struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewRunStore creates a run store. dir is ignored when pool is non-nil.
func NewRunStore(pool *pgxpool.Pool, dir string) (*RunStore, error) {
	if pool == nil {
		if dir == "" {
			return nil, errors.New("run store needs a database pool or a directory")
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create run dir: %w", err)
		}
	}
	return &RunStore{pool: pool, fileDir: dir}, nil
}

// Save persists a report under its RunID. Saving an existing ID replaces it.
func (s *RunStore) Save(ctx context.Context, rep *report.Report) error {
	if rep == nil || rep.RunID == "" {
		return errors.New("report has no run id")
	}
	run := Run{
		ID:        rep.RunID,
		Ticker:    strings.ToUpper(rep.Company.Ticker),
		CreatedAt: rep.GeneratedAt.UTC(),
		Report:    rep,
	}

	if s.pool != nil {
		jsonData, err := json.Marshal(rep)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		query := `
			INSERT INTO valuation_runs (id, ticker, report_json, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id)
			DO UPDATE SET
				ticker = EXCLUDED.ticker,
				report_json = EXCLUDED.report_json,
				created_at = EXCLUDED.created_at;
		`
		if _, err := s.pool.Exec(ctx, query, run.ID, run.Ticker, jsonData, run.CreatedAt); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := os.WriteFile(s.filePath(run.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}
	return nil
}

// Get loads a run by ID.
func (s *RunStore) Get(ctx context.Context, id string) (*Run, error) {
	if s.pool != nil {
		query := `SELECT ticker, report_json, created_at FROM valuation_runs WHERE id = $1`
		run := Run{ID: id}
		var jsonData []byte
		err := s.pool.QueryRow(ctx, query, id).Scan(&run.Ticker, &jsonData, &run.CreatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
			}
			return nil, fmt.Errorf("failed to load run: %w", err)
		}
		if err := json.Unmarshal(jsonData, &run.Report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		return &run, nil
	}

	if strings.ContainsAny(id, `/\`) || id == "" {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return readRunFile(s.filePath(id))
}

// List returns the most recent runs for ticker, newest first, without their reports.
func (s *RunStore) List(ctx context.Context, ticker string, limit int) ([]Run, error) {
	ticker = strings.ToUpper(ticker)
	if limit <= 0 {
		limit = 20
	}

	if s.pool != nil {
		query := `
			SELECT id, ticker, created_at FROM valuation_runs
			WHERE ticker = $1
			ORDER BY created_at DESC
			LIMIT $2
		`
		rows, err := s.pool.Query(ctx, query, ticker, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		defer rows.Close()

		var runs []Run
		for rows.Next() {
			var run Run
			if err := rows.Scan(&run.ID, &run.Ticker, &run.CreatedAt); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			runs = append(runs, run)
		}
		return runs, rows.Err()
	}

	matches, err := filepath.Glob(filepath.Join(s.fileDir, "*.json"))
	if err != nil {
		return nil, err
	}
	var runs []Run
	for _, path := range matches {
		run, err := readRunFile(path)
		if err != nil {
			return nil, err
		}
		if run.Ticker != ticker {
			continue
		}
		run.Report = nil
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *RunStore) filePath(id string) string {
	return filepath.Join(s.fileDir, id+".json")
}

func readRunFile(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, strings.TrimSuffix(filepath.Base(path), ".json"))
		}
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}
